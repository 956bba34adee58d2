package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"auction_backend/internal/auth"
	"auction_backend/internal/bidding"
	"auction_backend/internal/logger"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"
	"auction_backend/internal/services/dto"
	"auction_backend/internal/visibility"
	"auction_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type PropertyService interface {
	ListProperties(ctx context.Context, db *gorm.DB, principal *auth.Principal, query *dto.ListPropertiesQuery) (*dto.PropertyListResponse, error)
	GetProperty(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) (*dto.PropertyResponse, error)
	CreateProperty(ctx context.Context, db *gorm.DB, principal *auth.Principal, req *dto.CreatePropertyRequest) (*dto.PropertyResponse, error)
	UpdateVisibility(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, raw any) (*dto.PropertyResponse, error)

	LinkBidder(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, req *dto.LinkBidderRequest) (*dto.LinkedBidderResponse, error)
	ListLinkedBidders(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) ([]*dto.LinkedBidderResponse, error)

	PlaceBid(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, req *dto.PlaceBidRequest) (*dto.BidResponse, error)
	ListBids(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) (*dto.BidListResponse, error)
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	bidRepo      repositories.BidRepository
	linkRepo     repositories.LinkedBidderRepository
	userRepo     repositories.UserRepository
	now          func() time.Time
}

func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	bidRepo repositories.BidRepository,
	linkRepo repositories.LinkedBidderRepository,
	userRepo repositories.UserRepository,
) PropertyService {
	return &propertyService{
		propertyRepo: propertyRepo,
		bidRepo:      bidRepo,
		linkRepo:     linkRepo,
		userRepo:     userRepo,
		now:          time.Now,
	}
}

// =======================
// Listing and detail
// =======================

func (s *propertyService) ListProperties(ctx context.Context, db *gorm.DB, principal *auth.Principal, query *dto.ListPropertiesQuery) (*dto.PropertyListResponse, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}

	status := models.PropertyStatus(query.Status)
	criteria := repositories.PropertyCriteria{
		Query:      query.Q,
		EndingSoon: query.EndingSoon,
		Now:        s.now(),
	}
	if principal.IsCounty() {
		criteria.Status = status
	} else {
		criteria.LinkedBidderID = principal.UserID
	}

	properties, err := s.propertyRepo.FindWithCriteria(db, criteria)
	if err != nil {
		logger.CtxWithError(ctx, "failed to list properties", err)
		return nil, apperrors.DatabaseError(err)
	}
	if !principal.IsCounty() && status != "" {
		properties = filterByVisibleStatus(properties, status)
	}

	ids := make([]string, 0, len(properties))
	for _, p := range properties {
		ids = append(ids, p.ID)
	}

	maxByProperty, err := s.bidRepo.MaxAmountsByProperty(db, ids)
	if err != nil {
		logger.CtxWithError(ctx, "failed to aggregate bids", err, "properties", len(ids))
		return nil, apperrors.DatabaseError(err)
	}
	current := bidding.ResolveAll(properties, maxByProperty)

	out := make([]*dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		p := &properties[i]
		out = append(out, toPropertyResponse(p, current[p.ID], principal.IsCounty()))
	}

	return &dto.PropertyListResponse{Properties: out, Total: len(out)}, nil
}

func (s *propertyService) GetProperty(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) (*dto.PropertyResponse, error) {
	property, err := s.loadVisibleProperty(db, principal, propertyID)
	if err != nil {
		return nil, err
	}

	maxByProperty, err := s.bidRepo.MaxAmountsByProperty(db, []string{property.ID})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	current := bidding.Resolve(maxByProperty, property.ID, property.MinBid)

	return toPropertyResponse(property, current, principal.IsCounty()), nil
}

// filterByVisibleStatus keeps properties whose status is both visible to bidders and
// equal to status. A hidden status never matches, whatever its stored value.
func filterByVisibleStatus(properties []models.Property, status models.PropertyStatus) []models.Property {
	out := properties[:0]
	for _, p := range properties {
		if visibility.Evaluate(p.VisibilitySettings, visibility.FieldPropertyStatus) && p.Status == status {
			out = append(out, p)
		}
	}
	return out
}

// loadVisibleProperty returns the property if the principal may see it.
// Unlinked bidders get a 404 so the property's existence is not revealed.
func (s *propertyService) loadVisibleProperty(db *gorm.DB, principal *auth.Principal, propertyID string) (*models.Property, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}

	property, err := s.propertyRepo.FindByID(db, propertyID)
	if err != nil {
		return nil, handlePropertyError(err)
	}

	if principal.IsCounty() {
		return property, nil
	}

	linked, err := s.linkRepo.IsLinked(db, property.ID, principal.UserID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if !linked {
		return nil, apperrors.ErrNotFound(repositories.ErrPropertyNotFound)
	}
	return property, nil
}

// =======================
// County operations
// =======================

func (s *propertyService) CreateProperty(ctx context.Context, db *gorm.DB, principal *auth.Principal, req *dto.CreatePropertyRequest) (*dto.PropertyResponse, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}
	if !principal.Can(auth.PermPropertiesWrite) {
		return nil, apperrors.ErrCountyRoleRequired()
	}

	owner, err := s.userRepo.FindByID(db, principal.UserID)
	if err != nil {
		return nil, handleUserError(err)
	}

	settings := owner.VisibilityPreferences
	if req.VisibilitySettings != nil {
		settings = visibility.Normalize(req.VisibilitySettings)
	}

	status := models.PropertyStatus(req.Status)
	if status == "" {
		status = models.PropertyStatusActive
	}

	property := &models.Property{
		CreatedBy:          principal.UserID,
		Address:            strings.TrimSpace(req.Address),
		ParcelID:           strings.TrimSpace(req.ParcelID),
		Description:        req.Description,
		MinBid:             req.MinBid,
		Status:             status,
		AuctionEnd:         req.AuctionEnd,
		VisibilitySettings: settings,
	}

	if err := s.propertyRepo.Create(db, property); err != nil {
		logger.CtxWithError(ctx, "failed to create property", err)
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "property created", "property_id", property.ID)
	return toPropertyResponse(property, bidding.CurrentBid(property.ID, nil, property.MinBid), true), nil
}

// UpdateVisibility replaces the property's settings with the normalized body.
func (s *propertyService) UpdateVisibility(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, raw any) (*dto.PropertyResponse, error) {
	property, err := loadOwnedProperty(db, s.propertyRepo, principal, propertyID)
	if err != nil {
		return nil, err
	}

	settings := visibility.Normalize(raw)
	if err := s.propertyRepo.UpdateVisibility(db, property.ID, settings); err != nil {
		return nil, handlePropertyError(err)
	}
	property.VisibilitySettings = settings

	maxByProperty, err := s.bidRepo.MaxAmountsByProperty(db, []string{property.ID})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "property visibility updated", "property_id", property.ID)
	return toPropertyResponse(property, bidding.Resolve(maxByProperty, property.ID, property.MinBid), true), nil
}

func (s *propertyService) LinkBidder(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, req *dto.LinkBidderRequest) (*dto.LinkedBidderResponse, error) {
	property, err := loadOwnedProperty(db, s.propertyRepo, principal, propertyID)
	if err != nil {
		return nil, err
	}

	var bidder *models.User
	if req.BidderID != "" {
		bidder, err = s.userRepo.FindByID(db, req.BidderID)
	} else {
		bidder, err = s.userRepo.FindByEmail(db, req.Email)
	}
	if err != nil {
		return nil, handleUserError(err)
	}
	if bidder.Role != models.UserRoleBidder {
		return nil, apperrors.ErrInvalidOperation("property", "Only bidder accounts can be linked to a property")
	}

	status := models.LinkStatus(req.Status)
	if status == "" {
		status = models.LinkStatusInvited
	}

	link := &models.PropertyLinkedBidder{
		PropertyID: property.ID,
		BidderID:   bidder.ID,
		Status:     status,
	}
	if err := s.linkRepo.Link(db, link); err != nil {
		logger.CtxWithError(ctx, "failed to link bidder", err, "property_id", property.ID, "bidder_id", bidder.ID)
		return nil, apperrors.DatabaseError(err)
	}

	return &dto.LinkedBidderResponse{
		BidderID: bidder.ID,
		Name:     bidder.Name,
		Email:    bidder.Email,
		Status:   string(link.Status),
		LinkedAt: link.CreatedAt,
	}, nil
}

func (s *propertyService) ListLinkedBidders(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) ([]*dto.LinkedBidderResponse, error) {
	property, err := loadOwnedProperty(db, s.propertyRepo, principal, propertyID)
	if err != nil {
		return nil, err
	}

	links, err := s.linkRepo.FindWithBidders(db, property.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.LinkedBidderResponse, 0, len(links))
	for _, link := range links {
		resp := &dto.LinkedBidderResponse{
			BidderID: link.BidderID,
			Status:   string(link.Status),
			LinkedAt: link.CreatedAt,
		}
		if link.Bidder != nil {
			resp.Name = link.Bidder.Name
			resp.Email = link.Bidder.Email
		}
		out = append(out, resp)
	}
	return out, nil
}

// =======================
// Bids
// =======================

func (s *propertyService) PlaceBid(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, req *dto.PlaceBidRequest) (*dto.BidResponse, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}
	if !principal.Can(auth.PermBidsPlace) {
		return nil, apperrors.NewForbiddenError("Bidder role required")
	}

	property, err := s.loadVisibleProperty(db, principal, propertyID)
	if err != nil {
		return nil, err
	}

	if !property.AcceptsBids(s.now()) {
		return nil, apperrors.ErrAuctionClosed()
	}
	if minimum := bidding.MinimumAcceptable(property.MinBid); req.Amount < minimum {
		return nil, apperrors.ErrBidTooLow(minimum)
	}

	bid := &models.Bid{
		PropertyID: property.ID,
		BidderID:   principal.UserID,
		Amount:     req.Amount,
	}
	if err := s.bidRepo.Create(db, bid); err != nil {
		logger.CtxWithError(ctx, "failed to place bid", err, "property_id", property.ID)
		return nil, apperrors.DatabaseError(err)
	}

	s.markBidding(ctx, db, property.ID, principal.UserID)

	logger.CtxInfo(ctx, "bid placed", "property_id", property.ID, "amount", bid.Amount)
	return &dto.BidResponse{
		ID:        bid.ID,
		Amount:    bid.Amount,
		BidderID:  bid.BidderID,
		Mine:      true,
		CreatedAt: bid.CreatedAt,
	}, nil
}

// markBidding moves an invited or interested link to bidding. Best effort.
func (s *propertyService) markBidding(ctx context.Context, db *gorm.DB, propertyID, bidderID string) {
	link, err := s.linkRepo.FindLink(db, propertyID, bidderID)
	if err != nil {
		logger.CtxWarn(ctx, "could not load bidder link", "property_id", propertyID, "error", err.Error())
		return
	}
	if link.Status != models.LinkStatusInvited && link.Status != models.LinkStatusInterested {
		return
	}
	if err := s.linkRepo.UpdateStatus(db, propertyID, bidderID, models.LinkStatusBidding); err != nil {
		logger.CtxWarn(ctx, "could not update bidder link", "property_id", propertyID, "error", err.Error())
	}
}

func (s *propertyService) ListBids(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) (*dto.BidListResponse, error) {
	property, err := s.loadVisibleProperty(db, principal, propertyID)
	if err != nil {
		return nil, err
	}

	county := principal.IsCounty()
	settings := property.VisibilitySettings
	if !county && !visibility.Evaluate(settings, visibility.FieldBidHistory) {
		return nil, apperrors.NewForbiddenError("Bid history is not visible for this property")
	}
	showBidders := county || visibility.Evaluate(settings, visibility.FieldBidderList)

	bids, err := s.bidRepo.FindByProperty(db, property.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.BidResponse, 0, len(bids))
	for _, b := range bids {
		resp := &dto.BidResponse{
			ID:        b.ID,
			Amount:    b.Amount,
			Mine:      b.BidderID == principal.UserID,
			CreatedAt: b.CreatedAt,
		}
		if showBidders || resp.Mine {
			resp.BidderID = b.BidderID
		}
		out = append(out, resp)
	}

	var current *int64
	if county || visibility.Evaluate(settings, visibility.FieldCurrentBid) {
		current = bidding.Resolve(bidding.MaxByProperty(bids), property.ID, property.MinBid)
	}

	return &dto.BidListResponse{Bids: out, CurrentBid: current}, nil
}

// =======================
// Helpers
// =======================

// toPropertyResponse applies the visibility policy for bidder viewers.
// County viewers see every field.
func toPropertyResponse(p *models.Property, currentBid *int64, county bool) *dto.PropertyResponse {
	settings := p.VisibilitySettings
	allowed := func(f visibility.Field) bool {
		return county || visibility.Evaluate(settings, f)
	}

	resp := &dto.PropertyResponse{
		ID:                 p.ID,
		Address:            p.Address,
		ParcelID:           p.ParcelID,
		Description:        p.Description,
		AuctionEnd:         p.AuctionEnd,
		VisibilitySettings: settings,
		CreatedAt:          p.CreatedAt,
	}

	if allowed(visibility.FieldMinBid) && p.MinBid != nil {
		v := *p.MinBid
		resp.MinBid = &v
	}
	if allowed(visibility.FieldCurrentBid) {
		resp.CurrentBid = currentBid
	}
	if allowed(visibility.FieldPropertyStatus) {
		status := string(p.Status)
		resp.Status = &status
	}
	if county {
		resp.CreatedBy = p.CreatedBy
	}
	return resp
}

func handleUserError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.ErrNotFound(err)
	}
	if errors.Is(err, repositories.ErrUserAlreadyExists) {
		return apperrors.ErrAlreadyExists(err)
	}
	return apperrors.DatabaseError(err)
}
