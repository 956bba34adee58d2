package apperrors

import (
	"fmt"
	"net/http"
)

// =========================================================================
// Factories wrapping repository errors
// =========================================================================

// ErrNotFound maps a repository "not found" error to a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists maps a duplicate-row error to a 409.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// =========================================================================
// Factories for fresh errors
// =========================================================================

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// NotFound builds a 404 for a named resource, e.g. NotFound("property").
func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// ErrCountyRoleRequired is returned when a bidder calls a county-only operation.
func ErrCountyRoleRequired() *AppError {
	return New(CodeForbidden, "auth", "County role required", http.StatusForbidden)
}

// ErrNotPropertyOwner is returned when a county user touches another county's property.
func ErrNotPropertyOwner() *AppError {
	return New(CodeForbidden, "property", "Only the property owner can perform this operation", http.StatusForbidden)
}

// ErrInvalidRecipients is returned when an explicit bidder subset contains ids that are not
// linked to the property. The offending ids are reported in Details.
func ErrInvalidRecipients(unlinked []string) *AppError {
	return New(CodeInvalidRecipients, "alert", "One or more bidders are not linked to this property", http.StatusBadRequest).
		WithDetails(map[string]interface{}{"bidderIds": unlinked})
}

// ErrBidTooLow is returned when a bid is below the property's minimum.
func ErrBidTooLow(minimum int64) *AppError {
	return New(CodeBidTooLow, "bid", fmt.Sprintf("Bid must be at least %d", minimum), http.StatusBadRequest)
}

// ErrAuctionClosed is returned for bids on a non-active or ended auction.
func ErrAuctionClosed() *AppError {
	return New(CodeAuctionClosed, "bid", "Auction is not accepting bids", http.StatusConflict)
}
