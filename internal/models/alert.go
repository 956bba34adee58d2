package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Alert is the audit row of one alert send. Written once, never updated.
type Alert struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	PropertyID     string    `gorm:"size:36;not null;index" json:"propertyId"`
	SentBy         string    `gorm:"size:36;not null" json:"sentBy"`
	Subject        string    `gorm:"size:255;not null" json:"subject"`
	Message        string    `gorm:"type:text;not null" json:"message"`
	RecipientCount int       `gorm:"not null" json:"recipientCount"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Alert) TableName() string {
	return "property_alerts"
}

func (a *Alert) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
