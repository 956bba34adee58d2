package dto

import (
	"time"

	"auction_backend/internal/visibility"
)

// ---------------- Requests ----------------

type ListPropertiesQuery struct {
	Q          string `form:"q" validate:"max=200"`
	EndingSoon bool   `form:"endingSoon"`
	Status     string `form:"status" validate:"omitempty,is-property-status"`
}

type CreatePropertyRequest struct {
	Address     string     `json:"address" validate:"required_without=ParcelID,max=500"`
	ParcelID    string     `json:"parcelId" validate:"max=100"`
	Description string     `json:"description" validate:"max=5000"`
	MinBid      *int64     `json:"minBid" validate:"omitempty,min=0"`
	Status      string     `json:"status" validate:"omitempty,is-property-status"`
	AuctionEnd  *time.Time `json:"auctionEnd"`

	// Raw settings; nil means the owner's saved preferences.
	VisibilitySettings map[string]interface{} `json:"visibilitySettings"`
}

type LinkBidderRequest struct {
	BidderID string `json:"bidderId" validate:"required_without=Email"`
	Email    string `json:"email" validate:"omitempty,email"`
	Status   string `json:"status" validate:"omitempty,is-link-status"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount" validate:"required,min=1"`
}

// ---------------- Responses ----------------

// PropertyResponse is the role-scoped view of a property. Hidden fields are null.
type PropertyResponse struct {
	ID                 string              `json:"id"`
	Address            string              `json:"address"`
	ParcelID           string              `json:"parcelId"`
	Description        string              `json:"description"`
	MinBid             *int64              `json:"minBid"`
	CurrentBid         *int64              `json:"currentBid"`
	Status             *string             `json:"status"`
	AuctionEnd         *time.Time          `json:"auctionEnd"`
	VisibilitySettings visibility.Settings `json:"visibilitySettings"`
	CreatedBy          string              `json:"createdBy,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
}

type PropertyListResponse struct {
	Properties []*PropertyResponse `json:"properties"`
	Total      int                 `json:"total"`
}

type LinkedBidderResponse struct {
	BidderID string    `json:"bidderId"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Status   string    `json:"status"`
	LinkedAt time.Time `json:"linkedAt"`
}

// BidResponse omits BidderID when the viewer may not see bidder identities.
type BidResponse struct {
	ID        string    `json:"id"`
	Amount    int64     `json:"amount"`
	BidderID  string    `json:"bidderId,omitempty"`
	Mine      bool      `json:"mine,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type BidListResponse struct {
	Bids       []*BidResponse `json:"bids"`
	CurrentBid *int64         `json:"currentBid"`
}
