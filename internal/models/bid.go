package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bid is append-only; rows are never updated or deleted.
type Bid struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	PropertyID string    `gorm:"size:36;not null;index" json:"propertyId"`
	BidderID   string    `gorm:"size:36;not null;index" json:"bidderId"`
	Amount     int64     `gorm:"not null" json:"amount"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (b *Bid) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
