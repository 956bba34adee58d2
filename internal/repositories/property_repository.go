package repositories

import (
	"errors"
	"strings"
	"time"

	"auction_backend/internal/models"
	"auction_backend/internal/visibility"

	"gorm.io/gorm"
)

var ErrPropertyNotFound = errors.New("property not found")

// EndingSoonWindow bounds the endingSoon listing filter.
const EndingSoonWindow = 7 * 24 * time.Hour

type PropertyRepository interface {
	Create(db *gorm.DB, property *models.Property) error
	FindByID(db *gorm.DB, id string) (*models.Property, error)
	FindWithCriteria(db *gorm.DB, criteria PropertyCriteria) ([]models.Property, error)
	UpdateVisibility(db *gorm.DB, propertyID string, settings visibility.Settings) error
	FindExpired(db *gorm.DB, now time.Time) ([]models.Property, error)
	UpdateStatus(db *gorm.DB, propertyID string, status models.PropertyStatus) error
}

// PropertyCriteria filters listings. A non-empty LinkedBidderID restricts
// the result to properties that bidder is linked to.
type PropertyCriteria struct {
	Query          string
	EndingSoon     bool
	Status         models.PropertyStatus
	LinkedBidderID string
	Now            time.Time
}

type PropertyRepositoryImpl struct{}

func NewPropertyRepository() PropertyRepository {
	return &PropertyRepositoryImpl{}
}

func (r *PropertyRepositoryImpl) Create(db *gorm.DB, property *models.Property) error {
	return db.Create(property).Error
}

func (r *PropertyRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Property, error) {
	var property models.Property
	err := db.First(&property, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepositoryImpl) FindWithCriteria(db *gorm.DB, criteria PropertyCriteria) ([]models.Property, error) {
	var properties []models.Property
	err := propertyQuery(db, criteria).Find(&properties).Error
	return properties, err
}

// likeEscaper makes LIKE wildcards in a search term match literally. The escape
// character is '!' on every dialect; backslash literals are not portable.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func propertyQuery(db *gorm.DB, criteria PropertyCriteria) *gorm.DB {
	query := db.Model(&models.Property{})

	if criteria.LinkedBidderID != "" {
		query = query.
			Joins("JOIN property_linked_bidders plb ON plb.property_id = properties.id").
			Where("plb.bidder_id = ?", criteria.LinkedBidderID)
	}

	if q := strings.TrimSpace(criteria.Query); q != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
		query = query.Where("LOWER(properties.address) LIKE ? ESCAPE '!' OR LOWER(properties.parcel_id) LIKE ? ESCAPE '!'", pattern, pattern)
	}

	if criteria.Status != "" {
		query = query.Where("properties.status = ?", criteria.Status)
	}

	if criteria.EndingSoon {
		now := criteria.Now
		if now.IsZero() {
			now = time.Now()
		}
		query = query.
			Where("properties.auction_end > ? AND properties.auction_end <= ?", now, now.Add(EndingSoonWindow)).
			Order("properties.auction_end ASC")
	} else {
		query = query.Order("properties.created_at DESC")
	}

	return query.Select("properties.*")
}

func (r *PropertyRepositoryImpl) UpdateVisibility(db *gorm.DB, propertyID string, settings visibility.Settings) error {
	result := db.Model(&models.Property{}).Where("id = ?", propertyID).Update("visibility_settings", settings)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}

// FindExpired returns active properties whose auction ended at or before now.
func (r *PropertyRepositoryImpl) FindExpired(db *gorm.DB, now time.Time) ([]models.Property, error) {
	var properties []models.Property
	err := expiredQuery(db, now).Find(&properties).Error
	return properties, err
}

func expiredQuery(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Model(&models.Property{}).
		Where("status = ? AND auction_end IS NOT NULL AND auction_end <= ?", models.PropertyStatusActive, now).
		Order("auction_end ASC")
}

func (r *PropertyRepositoryImpl) UpdateStatus(db *gorm.DB, propertyID string, status models.PropertyStatus) error {
	result := db.Model(&models.Property{}).Where("id = ?", propertyID).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
