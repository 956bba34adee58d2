package services

import (
	"context"
	"errors"
	"strings"

	"auction_backend/internal/auth"
	"auction_backend/internal/logger"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"
	"auction_backend/pkg/apperrors"

	"gorm.io/gorm"
)

// Recipient is a linked bidder with a deliverable email address.
type Recipient struct {
	BidderID string
	Email    string
	Name     string
}

// Resolution is the outcome of recipient resolution for one alert.
type Resolution struct {
	// Recipients holds the selected bidders that have an email address.
	Recipients []Recipient
	// BidderIDs holds every selected linked bidder, with or without email.
	BidderIDs       []string
	CountyCopyEmail string
	OwnerID         string
}

// EmailAddresses is the deduplicated send set: bidder emails first, then the
// county copy. Comparison ignores case and surrounding spaces.
func (r *Resolution) EmailAddresses() []string {
	addresses := make([]string, 0, len(r.Recipients)+1)
	for _, rc := range r.Recipients {
		addresses = append(addresses, rc.Email)
	}
	if r.CountyCopyEmail != "" {
		addresses = append(addresses, r.CountyCopyEmail)
	}
	return uniqueEmails(addresses)
}

// NotificationTargets is the selected bidders plus the property owner.
// The acting user is not added unless they own the property.
func (r *Resolution) NotificationTargets() []string {
	seen := make(map[string]struct{}, len(r.BidderIDs)+1)
	targets := make([]string, 0, len(r.BidderIDs)+1)

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}

	for _, id := range r.BidderIDs {
		add(id)
	}
	add(r.OwnerID)
	return targets
}

type RecipientResolver interface {
	// Resolve selects the alert audience. A nil explicitBidderIDs selects every
	// linked bidder; otherwise every listed id must be linked.
	Resolve(ctx context.Context, db *gorm.DB, property *models.Property, explicitBidderIDs *[]string, actor *auth.Principal) (*Resolution, error)
}

type recipientResolver struct {
	linkRepo repositories.LinkedBidderRepository
	userRepo repositories.UserRepository
}

func NewRecipientResolver(linkRepo repositories.LinkedBidderRepository, userRepo repositories.UserRepository) RecipientResolver {
	return &recipientResolver{
		linkRepo: linkRepo,
		userRepo: userRepo,
	}
}

func (r *recipientResolver) Resolve(ctx context.Context, db *gorm.DB, property *models.Property, explicitBidderIDs *[]string, actor *auth.Principal) (*Resolution, error) {
	links, err := r.linkRepo.FindWithBidders(db, property.ID)
	if err != nil {
		logger.CtxWithError(ctx, "failed to load linked bidders", err, "property_id", property.ID)
		return nil, apperrors.DatabaseError(err)
	}

	selected, err := selectLinks(links, explicitBidderIDs)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		BidderIDs: make([]string, 0, len(selected)),
		OwnerID:   property.CreatedBy,
	}

	for _, link := range selected {
		res.BidderIDs = append(res.BidderIDs, link.BidderID)

		if link.Bidder == nil || strings.TrimSpace(link.Bidder.Email) == "" {
			continue
		}
		res.Recipients = append(res.Recipients, Recipient{
			BidderID: link.BidderID,
			Email:    strings.TrimSpace(link.Bidder.Email),
			Name:     link.Bidder.Name,
		})
	}

	res.CountyCopyEmail, err = r.countyCopyEmail(ctx, db, property, actor)
	if err != nil {
		return nil, err
	}

	return res, nil
}

// selectLinks filters links down to the explicit subset, rejecting ids that
// are not linked to the property.
func selectLinks(links []models.PropertyLinkedBidder, explicitBidderIDs *[]string) ([]models.PropertyLinkedBidder, error) {
	if explicitBidderIDs == nil {
		return links, nil
	}

	linked := make(map[string]models.PropertyLinkedBidder, len(links))
	for _, link := range links {
		linked[link.BidderID] = link
	}

	var (
		unlinked []string
		selected []models.PropertyLinkedBidder
		seen     = make(map[string]struct{}, len(*explicitBidderIDs))
	)

	for _, id := range *explicitBidderIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		link, ok := linked[id]
		if !ok {
			unlinked = append(unlinked, id)
			continue
		}
		selected = append(selected, link)
	}

	if len(unlinked) > 0 {
		return nil, apperrors.ErrInvalidRecipients(unlinked)
	}
	return selected, nil
}

// countyCopyEmail is the owner's email, else the acting user's, else "".
func (r *recipientResolver) countyCopyEmail(ctx context.Context, db *gorm.DB, property *models.Property, actor *auth.Principal) (string, error) {
	if property.CreatedBy != "" {
		owner, err := r.userRepo.FindByID(db, property.CreatedBy)
		switch {
		case err == nil && strings.TrimSpace(owner.Email) != "":
			return strings.TrimSpace(owner.Email), nil
		case err != nil && !errors.Is(err, repositories.ErrUserNotFound):
			logger.CtxWithError(ctx, "failed to load property owner", err, "owner_id", property.CreatedBy)
			return "", apperrors.DatabaseError(err)
		}
	}

	if actor == nil {
		return "", nil
	}
	if email := strings.TrimSpace(actor.Email); email != "" {
		return email, nil
	}

	user, err := r.userRepo.FindByID(db, actor.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return "", nil
		}
		return "", apperrors.DatabaseError(err)
	}
	return strings.TrimSpace(user.Email), nil
}

// uniqueEmails keeps the first occurrence of each address, compared
// case-insensitively after trimming. Blank entries are dropped.
func uniqueEmails(addresses []string) []string {
	seen := make(map[string]struct{}, len(addresses))
	out := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		key := strings.ToLower(addr)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, addr)
	}
	return out
}
