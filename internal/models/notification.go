package models

import (
	"time"

	"gorm.io/datatypes"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"size:36;not null;index" json:"userId"`
	Type    string         `gorm:"size:50;not null" json:"type"` // "alert"
	Title   string         `gorm:"size:255;not null" json:"title"`
	Message string         `gorm:"size:500" json:"message"`
	Link    string         `gorm:"size:500" json:"link"`
	Data    datatypes.JSON `json:"data"` // {"propertyId": "...", "alertId": "..."}
	IsRead  bool           `gorm:"default:false;index" json:"isRead"`
	ReadAt  *time.Time     `json:"readAt,omitempty"`
}
