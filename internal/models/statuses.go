package models

type UserStatus string
type UserRole string
type PropertyStatus string
type LinkStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleBidder UserRole = "bidder"
	UserRoleCounty UserRole = "county"

	PropertyStatusActive    PropertyStatus = "active"
	PropertyStatusSold      PropertyStatus = "sold"
	PropertyStatusWithdrawn PropertyStatus = "withdrawn"

	LinkStatusInvited    LinkStatus = "invited"
	LinkStatusInterested LinkStatus = "interested"
	LinkStatusBidding    LinkStatus = "bidding"
	LinkStatusWon        LinkStatus = "won"
)

const NotificationTypeAlert = "alert"

func (r UserRole) Valid() bool {
	return r == UserRoleBidder || r == UserRoleCounty
}

func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyStatusActive, PropertyStatusSold, PropertyStatusWithdrawn:
		return true
	}
	return false
}

func (s LinkStatus) Valid() bool {
	switch s {
	case LinkStatusInvited, LinkStatusInterested, LinkStatusBidding, LinkStatusWon:
		return true
	}
	return false
}
