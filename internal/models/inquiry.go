package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Inquiry struct {
	ID                 string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	SenderName         string         `json:"senderName"`
	SenderPhone        string         `json:"senderPhone"`
	SenderAddress      string         `json:"senderAddress" gorm:"type:text"`
	ReceiverName       string         `json:"receiverName"`
	ReceiverPhone      string         `json:"receiverPhone"`
	ReceiverAddress    string         `json:"receiverAddress" gorm:"type:text"`
	ZipCode            string         `json:"zipCode"`
	DestinationCountry string         `json:"destinationCountry"`
	WeightKg           float64        `json:"weightKg" gorm:"not null"`
	HasLiquorItems     bool           `json:"hasLiquorItems" gorm:"default:false"`
	HasSpecialItems    bool           `json:"hasSpecialItems" gorm:"default:false"`
	LiquorItems        datatypes.JSON `json:"liquorItems"`
	SpecialItems       datatypes.JSON `json:"specialItems"`
	BaseCost           float64        `json:"baseCost" gorm:"not null"`
	PackagingFee       float64        `json:"packagingFee" gorm:"not null"`
	LiquorCost         float64        `json:"liquorCost" gorm:"default:0"`
	FinalAmount        float64        `json:"finalAmount" gorm:"not null"`
	Status             InquiryStatus  `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ConfirmedAt        *time.Time     `json:"confirmedAt"`
	Notes              *string        `json:"notes" gorm:"type:text"`
	CreatedAt          time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

type InquiryStatus string

const (
	InquiryPending   InquiryStatus = "PENDING"
	InquiryConfirmed InquiryStatus = "CONFIRMED"
	InquiryCancelled InquiryStatus = "CANCELLED"
	InquiryBilled    InquiryStatus = "BILL"
)

// Valid reports whether s is one of the known lifecycle states.
func (s InquiryStatus) Valid() bool {
	switch s {
	case InquiryPending, InquiryConfirmed, InquiryCancelled, InquiryBilled:
		return true
	}
	return false
}

// InquirySummary is the {id, senderName} projection used by the billing picker.
type InquirySummary struct {
	ID         string `json:"id"`
	SenderName string `json:"senderName"`
}

func (i *Inquiry) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Status == "" {
		i.Status = InquiryPending
	}
	return nil
}
