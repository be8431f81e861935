package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Bill struct {
	ID           string         `json:"id" gorm:"type:varchar(36);primaryKey"`
	BillNo       string         `json:"billNo" gorm:"type:varchar(20);uniqueIndex;not null"`
	InquiryID    string         `json:"inquiryId" gorm:"type:varchar(36);uniqueIndex;not null"`
	Inquiry      *Inquiry       `json:"inquiry,omitempty" gorm:"foreignKey:InquiryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	BaseCost     float64        `json:"baseCost" gorm:"not null"`
	PackagingFee float64        `json:"packagingFee" gorm:"not null"`
	LiquorCost   float64        `json:"liquorCost" gorm:"default:0"`
	FinalAmount  float64        `json:"finalAmount" gorm:"not null"`
	Items        datatypes.JSON `json:"items"`
	CreatedAt    time.Time      `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// BillCounter holds the last issued value of a named sequence.
type BillCounter struct {
	Name  string `gorm:"type:varchar(50);primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

// BillNoCounter names the sequence backing Bill.BillNo.
const BillNoCounter = "bill_no"

// FormatBillNo renders a sequence value as a bill number, zero-padded to at least
// three digits ("001", "042", "1234").
func FormatBillNo(n int64) string {
	return fmt.Sprintf("%03d", n)
}

func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if len(b.Items) == 0 {
		b.Items = datatypes.JSON("[]")
	}
	return nil
}
