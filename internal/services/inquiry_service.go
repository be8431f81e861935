package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"courier_api/internal/database"
	"courier_api/internal/lifecycle"
	"courier_api/internal/models"
	"courier_api/internal/repository"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const msgInquiryNotFound = "Inquiry not found"

// openStatuses are the states an inquiry can leave.
var openStatuses = []models.InquiryStatus{
	models.InquiryPending,
	models.InquiryConfirmed,
	models.InquiryCancelled,
}

type CreateInquiryInput struct {
	SenderName         string         `json:"senderName"`
	SenderPhone        string         `json:"senderPhone"`
	SenderAddress      string         `json:"senderAddress"`
	ReceiverName       string         `json:"receiverName"`
	ReceiverPhone      string         `json:"receiverPhone"`
	ReceiverAddress    string         `json:"receiverAddress"`
	ZipCode            string         `json:"zipCode"`
	DestinationCountry string         `json:"destinationCountry"`
	WeightKg           *float64       `json:"weightKg"`
	HasLiquorItems     bool           `json:"hasLiquorItems"`
	HasSpecialItems    bool           `json:"hasSpecialItems"`
	LiquorItems        datatypes.JSON `json:"liquorItems"`
	SpecialItems       datatypes.JSON `json:"specialItems"`
	BaseCost           *float64       `json:"baseCost"`
	PackagingFee       *float64       `json:"packagingFee"`
	LiquorCost         *float64       `json:"liquorCost"`
	FinalAmount        *float64       `json:"finalAmount"`
	Notes              *string        `json:"notes"`
}

// UpdateInquiryInput is a partial update; nil fields are left untouched. A null
// liquorItems or specialItems is treated like an omitted one.
type UpdateInquiryInput struct {
	SenderName         *string               `json:"senderName"`
	SenderPhone        *string               `json:"senderPhone"`
	SenderAddress      *string               `json:"senderAddress"`
	ReceiverName       *string               `json:"receiverName"`
	ReceiverPhone      *string               `json:"receiverPhone"`
	ReceiverAddress    *string               `json:"receiverAddress"`
	ZipCode            *string               `json:"zipCode"`
	DestinationCountry *string               `json:"destinationCountry"`
	WeightKg           *float64              `json:"weightKg"`
	HasLiquorItems     *bool                 `json:"hasLiquorItems"`
	HasSpecialItems    *bool                 `json:"hasSpecialItems"`
	LiquorItems        datatypes.JSON        `json:"liquorItems"`
	SpecialItems       datatypes.JSON        `json:"specialItems"`
	BaseCost           *float64              `json:"baseCost"`
	PackagingFee       *float64              `json:"packagingFee"`
	LiquorCost         *float64              `json:"liquorCost"`
	FinalAmount        *float64              `json:"finalAmount"`
	Status             *models.InquiryStatus `json:"status"`
	Notes              *string               `json:"notes"`
}

// ConfirmedDataInput overwrites the fields staff adjust after confirmation.
// Item lists are replaced as given; an omitted or null list clears the column.
type ConfirmedDataInput struct {
	WeightKg     *float64       `json:"weightKg"`
	BaseCost     *float64       `json:"baseCost"`
	PackagingFee *float64       `json:"packagingFee"`
	LiquorCost   *float64       `json:"liquorCost"`
	FinalAmount  *float64       `json:"finalAmount"`
	LiquorItems  datatypes.JSON `json:"liquorItems"`
	SpecialItems datatypes.JSON `json:"specialItems"`
}

type InquiryListFilter struct {
	Status models.InquiryStatus
	Search string
}

type InquiryService interface {
	CreateInquiry(ctx context.Context, input CreateInquiryInput) (*models.Inquiry, error)
	ListInquiries(ctx context.Context, filter InquiryListFilter, page PageRequest) ([]models.Inquiry, Pagination, error)
	GetInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	UpdateInquiry(ctx context.Context, id string, input UpdateInquiryInput) (*models.Inquiry, error)
	ConfirmInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	CancelInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	ApproveInquiry(ctx context.Context, id string) (*models.Inquiry, error)
	ListConfirmedWithoutBill(ctx context.Context) ([]models.InquirySummary, error)
	ListForAdmin(ctx context.Context, status models.InquiryStatus, page PageRequest) ([]models.Inquiry, Pagination, error)
	UpdateConfirmedData(ctx context.Context, id string, input ConfirmedDataInput) (*models.Inquiry, error)
}

type inquiryService struct {
	inquiryRepo repository.InquiryRepository
	billRepo    repository.BillRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewInquiryService(inquiryRepo repository.InquiryRepository, billRepo repository.BillRepository, logger *zap.Logger) InquiryService {
	return &inquiryService{
		inquiryRepo: inquiryRepo,
		billRepo:    billRepo,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *inquiryService) CreateInquiry(ctx context.Context, input CreateInquiryInput) (*models.Inquiry, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}

	inquiry := &models.Inquiry{
		SenderName:         input.SenderName,
		SenderPhone:        input.SenderPhone,
		SenderAddress:      input.SenderAddress,
		ReceiverName:       input.ReceiverName,
		ReceiverPhone:      input.ReceiverPhone,
		ReceiverAddress:    input.ReceiverAddress,
		ZipCode:            input.ZipCode,
		DestinationCountry: input.DestinationCountry,
		WeightKg:           *input.WeightKg,
		HasLiquorItems:     input.HasLiquorItems,
		HasSpecialItems:    input.HasSpecialItems,
		LiquorItems:        nullableJSON(input.LiquorItems),
		SpecialItems:       nullableJSON(input.SpecialItems),
		BaseCost:           *input.BaseCost,
		PackagingFee:       *input.PackagingFee,
		FinalAmount:        *input.FinalAmount,
		Status:             models.InquiryPending,
		Notes:              input.Notes,
	}
	if input.LiquorCost != nil {
		inquiry.LiquorCost = *input.LiquorCost
	}

	if err := s.inquiryRepo.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to create inquiry: %w", err)
	}

	s.logger.Info("inquiry created", zap.String("inquiry_id", inquiry.ID))
	return inquiry, nil
}

func validateCreate(input CreateInquiryInput) error {
	var missing []string
	if input.WeightKg == nil {
		missing = append(missing, "weightKg")
	}
	if input.BaseCost == nil {
		missing = append(missing, "baseCost")
	}
	if input.PackagingFee == nil {
		missing = append(missing, "packagingFee")
	}
	if input.FinalAmount == nil {
		missing = append(missing, "finalAmount")
	}
	if len(missing) > 0 {
		return newError(KindValidation, "Missing required fields: "+strings.Join(missing, ", "))
	}
	if *input.WeightKg <= 0 {
		return newError(KindValidation, "weightKg must be a positive number")
	}
	return nil
}

func (s *inquiryService) ListInquiries(ctx context.Context, filter InquiryListFilter, page PageRequest) ([]models.Inquiry, Pagination, error) {
	page = page.Normalize()
	inquiries, total, err := s.inquiryRepo.List(ctx, repository.InquiryFilter{
		Status: filter.Status,
		Search: filter.Search,
	}, page.Offset(), page.Limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, NewPagination(page, total), nil
}

func (s *inquiryService) GetInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, newError(KindNotFound, msgInquiryNotFound)
		}
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}
	return inquiry, nil
}

func (s *inquiryService) UpdateInquiry(ctx context.Context, id string, input UpdateInquiryInput) (*models.Inquiry, error) {
	inquiry, err := s.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}

	var next models.InquiryStatus
	if input.Status != nil {
		next = *input.Status
	}
	if guard := lifecycle.CanUpdate(inquiry.Status, next); !guard.Allowed {
		return nil, newError(KindInvalidState, guard.Reason)
	}
	if input.WeightKg != nil && *input.WeightKg <= 0 {
		return nil, newError(KindValidation, "weightKg must be a positive number")
	}

	fields := partialFields(input)
	if next != "" && lifecycle.StampsConfirmedAt(inquiry.Status, next) {
		fields["confirmed_at"] = s.now()
	}

	// field-only edits apply in any state; status changes only leave open states
	var from []models.InquiryStatus
	if next != "" {
		from = openStatuses
	}
	return s.apply(ctx, id, fields, lifecycle.CanUpdate, from...)
}

func partialFields(input UpdateInquiryInput) map[string]interface{} {
	fields := map[string]interface{}{}
	setString := func(column string, v *string) {
		if v != nil {
			fields[column] = *v
		}
	}
	setFloat := func(column string, v *float64) {
		if v != nil {
			fields[column] = *v
		}
	}

	setString("sender_name", input.SenderName)
	setString("sender_phone", input.SenderPhone)
	setString("sender_address", input.SenderAddress)
	setString("receiver_name", input.ReceiverName)
	setString("receiver_phone", input.ReceiverPhone)
	setString("receiver_address", input.ReceiverAddress)
	setString("zip_code", input.ZipCode)
	setString("destination_country", input.DestinationCountry)
	setFloat("weight_kg", input.WeightKg)
	setFloat("base_cost", input.BaseCost)
	setFloat("packaging_fee", input.PackagingFee)
	setFloat("liquor_cost", input.LiquorCost)
	setFloat("final_amount", input.FinalAmount)
	if input.HasLiquorItems != nil {
		fields["has_liquor_items"] = *input.HasLiquorItems
	}
	if input.HasSpecialItems != nil {
		fields["has_special_items"] = *input.HasSpecialItems
	}
	if items := nullableJSON(input.LiquorItems); items != nil {
		fields["liquor_items"] = items
	}
	if items := nullableJSON(input.SpecialItems); items != nil {
		fields["special_items"] = items
	}
	if input.Status != nil {
		fields["status"] = *input.Status
	}
	if input.Notes != nil {
		fields["notes"] = *input.Notes
	}
	return fields
}

func (s *inquiryService) ConfirmInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	return s.transition(ctx, id, models.InquiryConfirmed, lifecycle.CanConfirm, models.InquiryPending)
}

func (s *inquiryService) CancelInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	return s.transition(ctx, id, models.InquiryCancelled, lifecycle.CanCancel, openStatuses...)
}

func (s *inquiryService) ApproveInquiry(ctx context.Context, id string) (*models.Inquiry, error) {
	return s.transition(ctx, id, models.InquiryConfirmed, lifecycle.CanApprove, openStatuses...)
}

// transition moves an inquiry to next after checking guard. The write is
// conditional on the row still being in one of the from statuses.
func (s *inquiryService) transition(ctx context.Context, id string, next models.InquiryStatus, guard func(models.InquiryStatus) lifecycle.GuardResult, from ...models.InquiryStatus) (*models.Inquiry, error) {
	inquiry, err := s.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if result := guard(inquiry.Status); !result.Allowed {
		return nil, newError(KindInvalidState, result.Reason)
	}

	fields := map[string]interface{}{"status": next}
	if next == models.InquiryConfirmed {
		fields["confirmed_at"] = s.now()
	}

	updated, err := s.apply(ctx, id, fields, func(current, _ models.InquiryStatus) lifecycle.GuardResult {
		return guard(current)
	}, from...)
	if err != nil {
		return nil, err
	}

	s.logger.Info("inquiry status changed",
		zap.String("inquiry_id", id),
		zap.String("from", string(inquiry.Status)),
		zap.String("to", string(next)),
	)
	return updated, nil
}

// apply writes fields while the inquiry is in one of the from statuses and
// returns the refreshed row. When the row changed underneath, guard is re-run
// against the current status to report why.
func (s *inquiryService) apply(ctx context.Context, id string, fields map[string]interface{}, guard func(current, next models.InquiryStatus) lifecycle.GuardResult, from ...models.InquiryStatus) (*models.Inquiry, error) {
	updated, err := s.inquiryRepo.Update(ctx, id, fields, from...)
	if err != nil {
		return nil, fmt.Errorf("failed to update inquiry: %w", err)
	}
	if !updated {
		current, err := s.GetInquiry(ctx, id)
		if err != nil {
			return nil, err
		}
		next, _ := fields["status"].(models.InquiryStatus)
		reason := guard(current.Status, next).Reason
		if reason == "" {
			reason = fmt.Sprintf("Inquiry status changed to %s", current.Status)
		}
		return nil, newError(KindInvalidState, reason)
	}
	return s.GetInquiry(ctx, id)
}

func (s *inquiryService) ListConfirmedWithoutBill(ctx context.Context) ([]models.InquirySummary, error) {
	confirmed, err := s.inquiryRepo.ListSummariesByStatus(ctx, models.InquiryConfirmed)
	if err != nil {
		return nil, fmt.Errorf("failed to list confirmed inquiries: %w", err)
	}
	billed, err := s.billRepo.ListInquiryIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list billed inquiries: %w", err)
	}

	hasBill := make(map[string]struct{}, len(billed))
	for _, id := range billed {
		hasBill[id] = struct{}{}
	}

	result := make([]models.InquirySummary, 0, len(confirmed))
	for _, summary := range confirmed {
		if _, ok := hasBill[summary.ID]; !ok {
			result = append(result, summary)
		}
	}
	return result, nil
}

func (s *inquiryService) ListForAdmin(ctx context.Context, status models.InquiryStatus, page PageRequest) ([]models.Inquiry, Pagination, error) {
	page = page.Normalize()

	filter := repository.InquiryFilter{ExcludeStatus: models.InquiryBilled}
	switch status {
	case models.InquiryPending, models.InquiryConfirmed, models.InquiryCancelled:
		filter = repository.InquiryFilter{Status: status}
	}

	inquiries, total, err := s.inquiryRepo.List(ctx, filter, page.Offset(), page.Limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, NewPagination(page, total), nil
}

func (s *inquiryService) UpdateConfirmedData(ctx context.Context, id string, input ConfirmedDataInput) (*models.Inquiry, error) {
	inquiry, err := s.GetInquiry(ctx, id)
	if err != nil {
		return nil, err
	}
	if guard := lifecycle.CanEditConfirmed(inquiry.Status); !guard.Allowed {
		return nil, newError(KindInvalidState, guard.Reason)
	}
	if input.WeightKg == nil || input.BaseCost == nil || input.PackagingFee == nil || input.FinalAmount == nil {
		return nil, newError(KindValidation, "weightKg, baseCost, packagingFee and finalAmount are required")
	}
	if *input.WeightKg <= 0 {
		return nil, newError(KindValidation, "weightKg must be a positive number")
	}

	liquorCost := 0.0
	if input.LiquorCost != nil {
		liquorCost = *input.LiquorCost
	}

	fields := map[string]interface{}{
		"weight_kg":     *input.WeightKg,
		"base_cost":     *input.BaseCost,
		"packaging_fee": *input.PackagingFee,
		"liquor_cost":   liquorCost,
		"final_amount":  *input.FinalAmount,
		"liquor_items":  nullableJSON(input.LiquorItems),
		"special_items": nullableJSON(input.SpecialItems),
	}

	return s.apply(ctx, id, fields, func(current, _ models.InquiryStatus) lifecycle.GuardResult {
		return lifecycle.CanEditConfirmed(current)
	}, models.InquiryConfirmed)
}

// nullableJSON maps an absent or JSON null document to nil, which is stored as NULL.
func nullableJSON(raw datatypes.JSON) datatypes.JSON {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return datatypes.JSON(trimmed)
}
