package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courier_api/internal/costing"
	"courier_api/internal/database"
	"courier_api/internal/lifecycle"
	"courier_api/internal/models"
	"courier_api/internal/repository"

	"go.uber.org/zap"
)

const (
	msgBillNotFound = "Bill not found"
	msgBillExists   = "Bill already exists for this inquiry"
)

// BillView is a bill as returned to clients, with items decoded into lines.
type BillView struct {
	ID           string             `json:"id"`
	BillNo       string             `json:"billNo"`
	InquiryID    string             `json:"inquiryId"`
	Inquiry      *models.Inquiry    `json:"inquiry,omitempty"`
	BaseCost     float64            `json:"baseCost"`
	PackagingFee float64            `json:"packagingFee"`
	LiquorCost   float64            `json:"liquorCost"`
	FinalAmount  float64            `json:"finalAmount"`
	Items        []costing.LineItem `json:"items"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// CreateBillInput carries optional line items; nil means none were sent.
type CreateBillInput struct {
	Items []costing.LineInput `json:"items"`
}

// UpdateBillInput edits a bill. When Items is non-nil the costs are derived from
// the lines and the cost fields are ignored.
type UpdateBillInput struct {
	Items        []costing.LineInput `json:"items"`
	BaseCost     *float64            `json:"baseCost"`
	PackagingFee *float64            `json:"packagingFee"`
	LiquorCost   *float64            `json:"liquorCost"`
	FinalAmount  *float64            `json:"finalAmount"`
}

type BillListFilter struct {
	BillNo        string
	InquiryStatus models.InquiryStatus
}

type BillService interface {
	CreateForConfirmedInquiry(ctx context.Context, inquiryID string, input CreateBillInput) (*BillView, error)
	ListBills(ctx context.Context, filter BillListFilter, page PageRequest) ([]BillView, Pagination, error)
	GetBill(ctx context.Context, id string) (*BillView, error)
	UpdateBill(ctx context.Context, id string, input UpdateBillInput) (*BillView, error)
}

type billService struct {
	billRepo    repository.BillRepository
	inquiryRepo repository.InquiryRepository
	logger      *zap.Logger
}

func NewBillService(billRepo repository.BillRepository, inquiryRepo repository.InquiryRepository, logger *zap.Logger) BillService {
	return &billService{
		billRepo:    billRepo,
		inquiryRepo: inquiryRepo,
		logger:      logger,
	}
}

func (s *billService) CreateForConfirmedInquiry(ctx context.Context, inquiryID string, input CreateBillInput) (*BillView, error) {
	inquiry, err := s.inquiryRepo.GetByID(ctx, inquiryID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, newError(KindNotFound, msgInquiryNotFound)
		}
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}
	if guard := lifecycle.CanBill(inquiry.Status); !guard.Allowed {
		return nil, newError(KindInvalidState, guard.Reason)
	}

	exists, err := s.billRepo.ExistsForInquiry(ctx, inquiry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing bill: %w", err)
	}
	if exists {
		return nil, newError(KindConflict, msgBillExists)
	}

	lines, costs := costing.ForNewBill(input.Items, inquiryCosts(inquiry), inquiry.DestinationCountry)
	items, err := costing.EncodeLines(lines)
	if err != nil {
		return nil, err
	}

	bill := &models.Bill{
		InquiryID:    inquiry.ID,
		BaseCost:     costs.BaseCost,
		PackagingFee: costs.PackagingFee,
		LiquorCost:   costs.LiquorCost,
		FinalAmount:  costs.FinalAmount,
		Items:        items,
	}
	if err := s.billRepo.CreateForInquiry(ctx, bill); err != nil {
		switch {
		case database.IsDuplicate(err):
			return nil, newError(KindConflict, msgBillExists)
		case errors.Is(err, repository.ErrInquiryNotConfirmed):
			return nil, newError(KindInvalidState, lifecycle.CanBill("").Reason)
		}
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	s.logger.Info("bill created",
		zap.String("bill_id", bill.ID),
		zap.String("bill_no", bill.BillNo),
		zap.String("inquiry_id", inquiry.ID),
		zap.Float64("final_amount", bill.FinalAmount),
	)
	return s.GetBill(ctx, bill.ID)
}

func (s *billService) ListBills(ctx context.Context, filter BillListFilter, page PageRequest) ([]BillView, Pagination, error) {
	page = page.Normalize()
	bills, total, err := s.billRepo.List(ctx, repository.BillFilter{
		BillNo:        filter.BillNo,
		InquiryStatus: filter.InquiryStatus,
	}, page.Offset(), page.Limit)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("failed to list bills: %w", err)
	}

	views := make([]BillView, 0, len(bills))
	for i := range bills {
		views = append(views, s.toView(&bills[i]))
	}
	return views, NewPagination(page, total), nil
}

func (s *billService) GetBill(ctx context.Context, id string) (*BillView, error) {
	bill, err := s.getBill(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.toView(bill)
	return &view, nil
}

func (s *billService) getBill(ctx context.Context, id string) (*models.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, newError(KindNotFound, msgBillNotFound)
		}
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	return bill, nil
}

func (s *billService) UpdateBill(ctx context.Context, id string, input UpdateBillInput) (*BillView, error) {
	bill, err := s.getBill(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if input.Items != nil {
		destination := ""
		if bill.Inquiry != nil {
			destination = bill.Inquiry.DestinationCountry
		}

		lines, costs := costing.ForBillUpdate(input.Items, billCosts(bill), destination)
		items, err := costing.EncodeLines(lines)
		if err != nil {
			return nil, err
		}
		fields["items"] = items
		fields["base_cost"] = costs.BaseCost
		fields["packaging_fee"] = costs.PackagingFee
		fields["liquor_cost"] = costs.LiquorCost
		fields["final_amount"] = costs.FinalAmount
	} else {
		if input.BaseCost != nil {
			fields["base_cost"] = *input.BaseCost
		}
		if input.PackagingFee != nil {
			fields["packaging_fee"] = *input.PackagingFee
		}
		if input.LiquorCost != nil {
			fields["liquor_cost"] = *input.LiquorCost
		}
		if input.FinalAmount != nil {
			fields["final_amount"] = *input.FinalAmount
		}
	}

	if len(fields) > 0 {
		if err := s.billRepo.Update(ctx, id, fields); err != nil {
			return nil, fmt.Errorf("failed to update bill: %w", err)
		}
		s.logger.Info("bill updated", zap.String("bill_id", id), zap.Int("fields", len(fields)))
	}
	return s.GetBill(ctx, id)
}

func (s *billService) toView(bill *models.Bill) BillView {
	lines, err := costing.DecodeLines(bill.Items)
	if err != nil {
		s.logger.Warn("malformed bill items",
			zap.String("bill_id", bill.ID),
			zap.Error(err),
		)
	}
	return BillView{
		ID:           bill.ID,
		BillNo:       bill.BillNo,
		InquiryID:    bill.InquiryID,
		Inquiry:      bill.Inquiry,
		BaseCost:     bill.BaseCost,
		PackagingFee: bill.PackagingFee,
		LiquorCost:   bill.LiquorCost,
		FinalAmount:  bill.FinalAmount,
		Items:        lines,
		CreatedAt:    bill.CreatedAt,
		UpdatedAt:    bill.UpdatedAt,
	}
}

func inquiryCosts(inquiry *models.Inquiry) costing.Costs {
	return costing.Costs{
		BaseCost:     inquiry.BaseCost,
		PackagingFee: inquiry.PackagingFee,
		LiquorCost:   inquiry.LiquorCost,
		FinalAmount:  inquiry.FinalAmount,
	}
}

func billCosts(bill *models.Bill) costing.Costs {
	return costing.Costs{
		BaseCost:     bill.BaseCost,
		PackagingFee: bill.PackagingFee,
		LiquorCost:   bill.LiquorCost,
		FinalAmount:  bill.FinalAmount,
	}
}
