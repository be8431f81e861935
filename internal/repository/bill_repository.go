package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"courier_api/internal/models"

	"gorm.io/gorm"
)

// ErrInquiryNotConfirmed is returned when the inquiry left CONFIRMED before its
// bill could be committed.
var ErrInquiryNotConfirmed = errors.New("inquiry is not confirmed")

// ErrBillCounterMissing means the bill number sequence row was never seeded.
var ErrBillCounterMissing = errors.New("bill number sequence is not initialized, run migrations")

// BillFilter narrows bill listings. Zero values disable a condition.
type BillFilter struct {
	BillNo        string
	InquiryStatus models.InquiryStatus
}

func (f BillFilter) apply(db *gorm.DB) *gorm.DB {
	db = db.Joins("JOIN inquiries ON inquiries.id = bills.inquiry_id")
	if billNo := strings.TrimSpace(f.BillNo); billNo != "" {
		db = db.Where("bills.bill_no LIKE ?", "%"+billNo+"%")
	}
	if f.InquiryStatus != "" {
		db = db.Where("inquiries.status = ?", f.InquiryStatus)
	}
	return db
}

type BillRepository interface {
	// CreateForInquiry assigns the next bill number, inserts the bill and moves
	// its inquiry from CONFIRMED to BILL, all in one transaction.
	CreateForInquiry(ctx context.Context, bill *models.Bill) error
	GetByID(ctx context.Context, id string) (*models.Bill, error)
	List(ctx context.Context, filter BillFilter, offset, limit int) ([]models.Bill, int64, error)
	ExistsForInquiry(ctx context.Context, inquiryID string) (bool, error)
	ListInquiryIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, fields map[string]interface{}) error
}

type billRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) BillRepository {
	return &billRepository{db: db}
}

func (r *billRepository) CreateForInquiry(ctx context.Context, bill *models.Bill) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next, err := nextBillNo(tx)
		if err != nil {
			return err
		}
		bill.BillNo = models.FormatBillNo(next)

		if err := tx.Omit("Inquiry").Create(bill).Error; err != nil {
			return err
		}

		result := tx.Model(&models.Inquiry{}).
			Where("id = ? AND status = ?", bill.InquiryID, models.InquiryConfirmed).
			Update("status", models.InquiryBilled)
		if result.Error != nil {
			return fmt.Errorf("failed to mark inquiry as billed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrInquiryNotConfirmed
		}
		return nil
	})
}

// nextBillNo increments the bill number sequence. The UPDATE holds the counter
// row lock until the surrounding transaction ends. The row is seeded by the schema
// setup and never created here.
func nextBillNo(tx *gorm.DB) (int64, error) {
	result := tx.Model(&models.BillCounter{}).
		Where("name = ?", models.BillNoCounter).
		Update("value", gorm.Expr("value + ?", 1))
	if result.Error != nil {
		return 0, fmt.Errorf("failed to increment bill counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, ErrBillCounterMissing
	}

	var counter models.BillCounter
	if err := tx.Where("name = ?", models.BillNoCounter).First(&counter).Error; err != nil {
		return 0, fmt.Errorf("failed to read bill counter: %w", err)
	}
	return counter.Value, nil
}

func (r *billRepository) GetByID(ctx context.Context, id string) (*models.Bill, error) {
	var bill models.Bill
	err := r.db.WithContext(ctx).Preload("Inquiry").Where("id = ?", id).First(&bill).Error
	if err != nil {
		return nil, err
	}
	return &bill, nil
}

func (r *billRepository) List(ctx context.Context, filter BillFilter, offset, limit int) ([]models.Bill, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Bill{}).Scopes(filter.apply).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	bills := []models.Bill{}
	err = r.db.WithContext(ctx).
		Scopes(filter.apply).
		Preload("Inquiry").
		Order("bills.created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&bills).Error
	return bills, total, err
}

func (r *billRepository) ExistsForInquiry(ctx context.Context, inquiryID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bill{}).Where("inquiry_id = ?", inquiryID).Count(&count).Error
	return count > 0, err
}

func (r *billRepository) ListInquiryIDs(ctx context.Context) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.Bill{}).Pluck("inquiry_id", &ids).Error
	return ids, err
}

func (r *billRepository) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Bill{}).Where("id = ?", id).Updates(fields).Error
}
