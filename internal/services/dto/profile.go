package dto

import "auction_backend/internal/visibility"

type VisibilityPreferencesResponse struct {
	VisibilityPreferences visibility.Settings `json:"visibilityPreferences"`
}
