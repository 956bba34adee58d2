package workers

import (
	"context"
	"errors"
	"time"

	"auction_backend/internal/logger"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"

	"gorm.io/gorm"
)

// AuctionWorker closes auctions whose end time has passed.
type AuctionWorker struct {
	db           *gorm.DB
	propertyRepo repositories.PropertyRepository
	bidRepo      repositories.BidRepository
	linkRepo     repositories.LinkedBidderRepository
	interval     time.Duration
	now          func() time.Time
}

func NewAuctionWorker(
	db *gorm.DB,
	propertyRepo repositories.PropertyRepository,
	bidRepo repositories.BidRepository,
	linkRepo repositories.LinkedBidderRepository,
	interval time.Duration,
) *AuctionWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &AuctionWorker{
		db:           db,
		propertyRepo: propertyRepo,
		bidRepo:      bidRepo,
		linkRepo:     linkRepo,
		interval:     interval,
		now:          time.Now,
	}
}

// Start runs the close loop until ctx is cancelled.
func (w *AuctionWorker) Start(ctx context.Context) {
	go w.run(ctx)
}

func (w *AuctionWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Auction worker stopped")
			return
		case <-ticker.C:
			closed, err := w.CloseExpired(ctx)
			if err != nil {
				logger.CtxWithError(ctx, "Error closing expired auctions", err)
			} else if closed > 0 {
				logger.CtxInfo(ctx, "Closed expired auctions", "count", closed)
			}
		}
	}
}

// CloseExpired marks every ended auction that received bids as sold and moves the
// highest bidder's link to won. Ended auctions without bids are left active; they
// already refuse new bids. Returns the number of auctions closed.
func (w *AuctionWorker) CloseExpired(ctx context.Context) (int, error) {
	db := w.db.WithContext(ctx)

	expired, err := w.propertyRepo.FindExpired(db, w.now())
	if err != nil {
		return 0, err
	}

	closed := 0
	for i := range expired {
		p := &expired[i]

		// Highest amount first, earliest bid first among equals.
		bids, err := w.bidRepo.FindByProperty(db, p.ID)
		if err != nil {
			return closed, err
		}
		if len(bids) == 0 {
			continue
		}
		winner := bids[0]

		if err := w.propertyRepo.UpdateStatus(db, p.ID, models.PropertyStatusSold); err != nil {
			return closed, err
		}
		closed++

		err = w.linkRepo.UpdateStatus(db, p.ID, winner.BidderID, models.LinkStatusWon)
		if err != nil && !errors.Is(err, repositories.ErrBidderNotLinked) {
			return closed, err
		}
		logger.CtxInfo(ctx, "auction closed", "property_id", p.ID, "winner_id", winner.BidderID, "amount", winner.Amount)
	}
	return closed, nil
}
