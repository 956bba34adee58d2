package repositories

import (
	"auction_backend/internal/models"

	"gorm.io/gorm"
)

type AlertRepository interface {
	Create(db *gorm.DB, alert *models.Alert) error
	FindByProperty(db *gorm.DB, propertyID string) ([]models.Alert, error)
}

type AlertRepositoryImpl struct{}

func NewAlertRepository() AlertRepository {
	return &AlertRepositoryImpl{}
}

func (r *AlertRepositoryImpl) Create(db *gorm.DB, alert *models.Alert) error {
	return db.Create(alert).Error
}

func (r *AlertRepositoryImpl) FindByProperty(db *gorm.DB, propertyID string) ([]models.Alert, error) {
	var alerts []models.Alert
	err := db.Where("property_id = ?", propertyID).
		Order("created_at DESC").
		Find(&alerts).Error
	return alerts, err
}
