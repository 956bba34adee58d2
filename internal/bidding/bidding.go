// Package bidding derives the current bid of a property. The current bid is never stored:
// it is the highest bid amount, else the property's minimum bid, else absent.
package bidding

import "auction_backend/internal/models"

// CurrentBid computes the current bid of propertyID from raw rows. Bids for other
// properties are ignored. Equal amounts are interchangeable; timestamps play no part.
func CurrentBid(propertyID string, bids []models.Bid, fallbackMinBid *int64) *int64 {
	var (
		best  int64
		found bool
	)
	for _, b := range bids {
		if b.PropertyID != propertyID {
			continue
		}
		if !found || b.Amount > best {
			best = b.Amount
			found = true
		}
	}
	if found {
		return &best
	}
	return copyAmount(fallbackMinBid)
}

// MaxByProperty folds raw rows into per-property maxima. It is the in-memory twin of the
// grouped MAX query the repository runs.
func MaxByProperty(bids []models.Bid) map[string]int64 {
	out := make(map[string]int64)
	for _, b := range bids {
		if cur, ok := out[b.PropertyID]; !ok || b.Amount > cur {
			out[b.PropertyID] = b.Amount
		}
	}
	return out
}

// Resolve merges one property's aggregated maximum with its fallback.
func Resolve(maxByProperty map[string]int64, propertyID string, fallbackMinBid *int64) *int64 {
	if v, ok := maxByProperty[propertyID]; ok {
		return &v
	}
	return copyAmount(fallbackMinBid)
}

// ResolveAll returns the current bid of every property, keyed by id.
func ResolveAll(properties []models.Property, maxByProperty map[string]int64) map[string]*int64 {
	out := make(map[string]*int64, len(properties))
	for i := range properties {
		p := &properties[i]
		out[p.ID] = Resolve(maxByProperty, p.ID, p.MinBid)
	}
	return out
}

// MinimumAcceptable is the smallest amount a new bid may have: the minimum bid, or 1 when
// the property has none.
func MinimumAcceptable(minBid *int64) int64 {
	if minBid == nil || *minBid < 1 {
		return 1
	}
	return *minBid
}

func copyAmount(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
