package models

// PropertyLinkedBidder grants a bidder visibility of, and participation in, one property.
type PropertyLinkedBidder struct {
	BaseModel
	PropertyID string     `gorm:"size:36;not null;uniqueIndex:idx_property_bidder" json:"propertyId"`
	BidderID   string     `gorm:"size:36;not null;uniqueIndex:idx_property_bidder;index" json:"bidderId"`
	Status     LinkStatus `gorm:"type:varchar(20);not null;default:'invited'" json:"status"`

	Bidder *User `gorm:"foreignKey:BidderID" json:"-"`
}
