package models

import (
	"time"

	"auction_backend/internal/visibility"
)

type Property struct {
	BaseModel
	CreatedBy   string         `gorm:"size:36;not null;index" json:"createdBy"`
	Address     string         `gorm:"size:500" json:"address"`
	ParcelID    string         `gorm:"size:100;index" json:"parcelId"`
	Description string         `gorm:"type:text" json:"description"`
	MinBid      *int64         `json:"minBid"`
	Status      PropertyStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	AuctionEnd  *time.Time     `gorm:"index" json:"auctionEnd"`

	VisibilitySettings visibility.Settings `json:"visibilitySettings"`

	Owner *User `gorm:"foreignKey:CreatedBy" json:"-"`
}

// DisplayName is the address, falling back to the parcel id.
func (p *Property) DisplayName() string {
	if p.Address != "" {
		return p.Address
	}
	return p.ParcelID
}

// AcceptsBids reports whether the auction is open at now.
func (p *Property) AcceptsBids(now time.Time) bool {
	if p.Status != PropertyStatusActive {
		return false
	}
	return p.AuctionEnd == nil || now.Before(*p.AuctionEnd)
}
