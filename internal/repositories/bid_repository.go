package repositories

import (
	"auction_backend/internal/models"

	"gorm.io/gorm"
)

type BidRepository interface {
	Create(db *gorm.DB, bid *models.Bid) error
	FindByProperty(db *gorm.DB, propertyID string) ([]models.Bid, error)
	MaxAmountsByProperty(db *gorm.DB, propertyIDs []string) (map[string]int64, error)
}

type BidRepositoryImpl struct{}

func NewBidRepository() BidRepository {
	return &BidRepositoryImpl{}
}

type propertyMaxAmount struct {
	PropertyID string
	MaxAmount  int64
}

func (r *BidRepositoryImpl) Create(db *gorm.DB, bid *models.Bid) error {
	return db.Create(bid).Error
}

func (r *BidRepositoryImpl) FindByProperty(db *gorm.DB, propertyID string) ([]models.Bid, error) {
	var bids []models.Bid
	err := db.Where("property_id = ?", propertyID).
		Order("amount DESC, created_at ASC").
		Find(&bids).Error
	return bids, err
}

// MaxAmountsByProperty returns the highest bid per property in one grouped
// statement. Properties without bids are absent from the map.
func (r *BidRepositoryImpl) MaxAmountsByProperty(db *gorm.DB, propertyIDs []string) (map[string]int64, error) {
	result := make(map[string]int64, len(propertyIDs))
	if len(propertyIDs) == 0 {
		return result, nil
	}

	var rows []propertyMaxAmount
	if err := maxAmountsQuery(db, propertyIDs).Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.PropertyID] = row.MaxAmount
	}
	return result, nil
}

func maxAmountsQuery(db *gorm.DB, propertyIDs []string) *gorm.DB {
	return db.Model(&models.Bid{}).
		Select("property_id, MAX(amount) AS max_amount").
		Where("property_id IN ?", propertyIDs).
		Group("property_id")
}
