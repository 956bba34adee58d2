package workers

import (
	"context"
	"testing"
	"time"

	"auction_backend/internal/models"
	"auction_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type stubProperties struct {
	repositories.PropertyRepository
	expired []models.Property
	status  map[string]models.PropertyStatus
}

func (s *stubProperties) FindExpired(_ *gorm.DB, _ time.Time) ([]models.Property, error) {
	return s.expired, nil
}

func (s *stubProperties) UpdateStatus(_ *gorm.DB, id string, status models.PropertyStatus) error {
	s.status[id] = status
	return nil
}

type stubBids struct {
	repositories.BidRepository
	byProperty map[string][]models.Bid
}

func (s *stubBids) FindByProperty(_ *gorm.DB, id string) ([]models.Bid, error) {
	return s.byProperty[id], nil
}

type stubLinks struct {
	repositories.LinkedBidderRepository
	won []string
}

func (s *stubLinks) UpdateStatus(_ *gorm.DB, propertyID, bidderID string, status models.LinkStatus) error {
	if bidderID == "unlinked" {
		return repositories.ErrBidderNotLinked
	}
	s.won = append(s.won, propertyID+"/"+bidderID+"/"+string(status))
	return nil
}

func TestCloseExpired(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=auction dbname=auction sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	props := &stubProperties{
		expired: []models.Property{
			{BaseModel: models.BaseModel{ID: "with-bids"}},
			{BaseModel: models.BaseModel{ID: "no-bids"}},
			{BaseModel: models.BaseModel{ID: "stray-winner"}},
		},
		status: map[string]models.PropertyStatus{},
	}
	bids := &stubBids{byProperty: map[string][]models.Bid{
		"with-bids":    {{BidderID: "b2", Amount: 300}, {BidderID: "b1", Amount: 300}, {BidderID: "b1", Amount: 100}},
		"stray-winner": {{BidderID: "unlinked", Amount: 10}},
	}}
	links := &stubLinks{}

	w := NewAuctionWorker(db, props, bids, links, 0)
	closed, err := w.CloseExpired(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, closed)
	assert.Equal(t, map[string]models.PropertyStatus{
		"with-bids":    models.PropertyStatusSold,
		"stray-winner": models.PropertyStatusSold,
	}, props.status)
	assert.Equal(t, []string{"with-bids/b2/won"}, links.won)
	assert.Equal(t, 5*time.Minute, w.interval)
}
