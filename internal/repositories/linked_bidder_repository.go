package repositories

import (
	"errors"

	"auction_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrBidderNotLinked = errors.New("bidder not linked to property")

type LinkedBidderRepository interface {
	Link(db *gorm.DB, link *models.PropertyLinkedBidder) error
	FindWithBidders(db *gorm.DB, propertyID string) ([]models.PropertyLinkedBidder, error)
	FindLink(db *gorm.DB, propertyID, bidderID string) (*models.PropertyLinkedBidder, error)
	IsLinked(db *gorm.DB, propertyID, bidderID string) (bool, error)
	UpdateStatus(db *gorm.DB, propertyID, bidderID string, status models.LinkStatus) error
}

type LinkedBidderRepositoryImpl struct{}

func NewLinkedBidderRepository() LinkedBidderRepository {
	return &LinkedBidderRepositoryImpl{}
}

// Link inserts the link or updates its status when the pair already exists.
func (r *LinkedBidderRepositoryImpl) Link(db *gorm.DB, link *models.PropertyLinkedBidder) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property_id"}, {Name: "bidder_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(link).Error
}

// FindWithBidders loads every link of the property with its bidder user.
func (r *LinkedBidderRepositoryImpl) FindWithBidders(db *gorm.DB, propertyID string) ([]models.PropertyLinkedBidder, error) {
	var links []models.PropertyLinkedBidder
	err := db.Preload("Bidder").
		Where("property_id = ?", propertyID).
		Order("created_at ASC").
		Find(&links).Error
	return links, err
}

func (r *LinkedBidderRepositoryImpl) FindLink(db *gorm.DB, propertyID, bidderID string) (*models.PropertyLinkedBidder, error) {
	var link models.PropertyLinkedBidder
	err := db.Where("property_id = ? AND bidder_id = ?", propertyID, bidderID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBidderNotLinked
		}
		return nil, err
	}
	return &link, nil
}

func (r *LinkedBidderRepositoryImpl) IsLinked(db *gorm.DB, propertyID, bidderID string) (bool, error) {
	var count int64
	err := db.Model(&models.PropertyLinkedBidder{}).
		Where("property_id = ? AND bidder_id = ?", propertyID, bidderID).
		Count(&count).Error
	return count > 0, err
}

func (r *LinkedBidderRepositoryImpl) UpdateStatus(db *gorm.DB, propertyID, bidderID string, status models.LinkStatus) error {
	result := db.Model(&models.PropertyLinkedBidder{}).
		Where("property_id = ? AND bidder_id = ?", propertyID, bidderID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBidderNotLinked
	}
	return nil
}
