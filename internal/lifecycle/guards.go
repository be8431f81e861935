// Package lifecycle holds the inquiry status state machine.
// Guards are pure functions that evaluate transitions without touching the store.
//
//	PENDING ──confirm──▶ CONFIRMED ──bill──▶ BILL
//	   │                    ▲
//	   └──cancel──▶ CANCELLED   approve (any non-BILL state)
package lifecycle

import (
	"fmt"

	"courier_api/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(format string, args ...interface{}) GuardResult {
	return GuardResult{Allowed: false, Reason: fmt.Sprintf(format, args...)}
}

// CanConfirm evaluates whether an inquiry can be confirmed.
// Rules:
// - Inquiry must be PENDING
func CanConfirm(current models.InquiryStatus) GuardResult {
	if current != models.InquiryPending {
		return deny("Only pending status can be confirmed (current status: %s)", current)
	}
	return allow()
}

// CanCancel evaluates whether an inquiry can be cancelled.
// Rules:
// - Billed inquiries are terminal
func CanCancel(current models.InquiryStatus) GuardResult {
	if current == models.InquiryBilled {
		return deny("Billed inquiries cannot be cancelled")
	}
	return allow()
}

// CanApprove evaluates whether an inquiry can be approved. Unlike CanConfirm it
// does not require PENDING.
// Rules:
// - Billed inquiries are terminal
func CanApprove(current models.InquiryStatus) GuardResult {
	if current == models.InquiryBilled {
		return deny("Billed inquiries cannot be approved")
	}
	return allow()
}

// CanBill evaluates whether a bill can be generated for an inquiry.
// Rules:
// - Inquiry must be CONFIRMED
func CanBill(current models.InquiryStatus) GuardResult {
	if current != models.InquiryConfirmed {
		return deny("Cannot create bill. Inquiry is not confirmed.")
	}
	return allow()
}

// CanEditConfirmed evaluates whether the confirmed-only fields (weight, costs,
// item lists) can be edited.
// Rules:
// - Inquiry must be CONFIRMED
func CanEditConfirmed(current models.InquiryStatus) GuardResult {
	if current != models.InquiryConfirmed {
		return deny("Only confirmed inquiries can be updated (current status: %s)", current)
	}
	return allow()
}

// CanUpdate evaluates a generic update. next is empty when the update leaves
// the status alone; such field edits are allowed in every state.
// Rules:
// - Billed inquiries keep their status
// - next must be a known status
// - BILL is only reachable through bill generation
func CanUpdate(current, next models.InquiryStatus) GuardResult {
	if next == "" {
		return allow()
	}
	if current == models.InquiryBilled {
		return deny("Billed inquiries cannot change status")
	}
	if !next.Valid() {
		return deny("Invalid status: %s", next)
	}
	if next == models.InquiryBilled {
		return deny("Status BILL is set by bill generation only")
	}
	return allow()
}

// StampsConfirmedAt reports whether moving from current to next enters CONFIRMED.
func StampsConfirmedAt(current, next models.InquiryStatus) bool {
	return next == models.InquiryConfirmed && current != models.InquiryConfirmed
}
