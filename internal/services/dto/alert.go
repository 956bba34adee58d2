package dto

import "time"

// ---------------- Requests ----------------

// SendAlertRequest is the body of POST /properties/:id/alerts.
// A nil BidderIDs targets every linked bidder; an empty list targets none.
type SendAlertRequest struct {
	Subject   string    `json:"subject" validate:"required,not-blank,max=255"`
	Message   string    `json:"message" validate:"required,not-blank,max=10000"`
	BidderIDs *[]string `json:"bidderIds"`
}

// ---------------- Responses ----------------

type DeliveryFailure struct {
	Email string `json:"email"`
	Error string `json:"error"`
}

type SendAlertResponse struct {
	Success        bool              `json:"success"`
	Sent           int               `json:"sent"`
	Failed         []DeliveryFailure `json:"failed"`
	AlertID        string            `json:"alertId"`
	RecipientCount int               `json:"recipientCount"`
	Notified       int               `json:"notified"`
}

type AlertResponse struct {
	ID             string    `json:"id"`
	PropertyID     string    `json:"propertyId"`
	SentBy         string    `json:"sentBy"`
	Subject        string    `json:"subject"`
	Message        string    `json:"message"`
	RecipientCount int       `json:"recipientCount"`
	CreatedAt      time.Time `json:"createdAt"`
}
