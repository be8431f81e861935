package repository

import (
	"context"
	"strings"

	"courier_api/internal/models"

	"gorm.io/gorm"
)

// InquiryFilter narrows inquiry listings. Zero values disable a condition.
type InquiryFilter struct {
	Status        models.InquiryStatus
	ExcludeStatus models.InquiryStatus
	Search        string
}

func (f InquiryFilter) apply(db *gorm.DB) *gorm.DB {
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.ExcludeStatus != "" {
		db = db.Where("status <> ?", f.ExcludeStatus)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		db = db.Where(
			"LOWER(sender_name) LIKE ? OR LOWER(receiver_name) LIKE ? OR LOWER(sender_phone) LIKE ? OR LOWER(destination_country) LIKE ?",
			like, like, like, like,
		)
	}
	return db
}

type InquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	GetByID(ctx context.Context, id string) (*models.Inquiry, error)
	List(ctx context.Context, filter InquiryFilter, offset, limit int) ([]models.Inquiry, int64, error)
	// Update writes fields to the inquiry. With allowed statuses the row is only
	// touched while its status is one of them; updated reports whether it was.
	Update(ctx context.Context, id string, fields map[string]interface{}, allowed ...models.InquiryStatus) (bool, error)
	ListSummariesByStatus(ctx context.Context, status models.InquiryStatus) ([]models.InquirySummary, error)
}

type inquiryRepository struct {
	db *gorm.DB
}

func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	return r.db.WithContext(ctx).Create(inquiry).Error
}

func (r *inquiryRepository) GetByID(ctx context.Context, id string) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&inquiry).Error
	if err != nil {
		return nil, err
	}
	return &inquiry, nil
}

func (r *inquiryRepository) List(ctx context.Context, filter InquiryFilter, offset, limit int) ([]models.Inquiry, int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Inquiry{}).Scopes(filter.apply).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	inquiries := []models.Inquiry{}
	err = r.db.WithContext(ctx).
		Scopes(filter.apply).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&inquiries).Error
	return inquiries, total, err
}

func (r *inquiryRepository) Update(ctx context.Context, id string, fields map[string]interface{}, allowed ...models.InquiryStatus) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id)
	if len(allowed) > 0 {
		query = query.Where("status IN ?", allowed)
	}

	result := query.Updates(fields)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *inquiryRepository) ListSummariesByStatus(ctx context.Context, status models.InquiryStatus) ([]models.InquirySummary, error) {
	summaries := []models.InquirySummary{}
	err := r.db.WithContext(ctx).
		Model(&models.Inquiry{}).
		Select("id, sender_name").
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(&summaries).Error
	return summaries, err
}
