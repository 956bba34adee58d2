package models

import "auction_backend/internal/visibility"

type User struct {
	BaseModel
	Name         string     `gorm:"size:255" json:"name"`
	Email        string     `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         UserRole   `gorm:"type:varchar(20);not null" json:"role"`
	Status       UserStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	// Defaults copied onto properties this user creates (county role only).
	VisibilityPreferences visibility.Settings `json:"visibilityPreferences"`
}
