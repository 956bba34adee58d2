package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"auction_backend/internal/auth"
	"auction_backend/internal/bidding"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"
	"auction_backend/internal/visibility"
	"auction_backend/pkg/apperrors"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var errStoreDown = errors.New("connection refused")

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=auction dbname=auction sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func requireAppError(t *testing.T, err error, status int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected *AppError, got %T", err)
	require.Equal(t, status, appErr.HTTPCode, appErr.Error())
	return appErr
}

func countyPrincipal(id, email string) *auth.Principal {
	return &auth.Principal{UserID: id, Email: email, Role: models.UserRoleCounty}
}

func bidderPrincipal(id string) *auth.Principal {
	return &auth.Principal{UserID: id, Email: id + "@bidders.test", Role: models.UserRoleBidder}
}

func int64Ptr(v int64) *int64 { return &v }

// ---------------- users ----------------

type fakeUserRepo struct {
	users   map[string]*models.User
	err     error
	updated map[string]visibility.Settings
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[string]*models.User{}, updated: map[string]visibility.Settings{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UpdateVisibilityPreferences(_ *gorm.DB, userID string, settings visibility.Settings) error {
	if _, ok := r.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	r.updated[userID] = settings
	r.users[userID].VisibilityPreferences = settings
	return nil
}

func (r *fakeUserRepo) CountByRole(_ *gorm.DB, role models.UserRole) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ---------------- properties ----------------

type fakePropertyRepo struct {
	properties map[string]*models.Property
	criteria   []repositories.PropertyCriteria
	created    []*models.Property
	links      *fakeLinkRepo
}

func newFakePropertyRepo(links *fakeLinkRepo, props ...*models.Property) *fakePropertyRepo {
	r := &fakePropertyRepo{properties: map[string]*models.Property{}, links: links}
	for _, p := range props {
		r.properties[p.ID] = p
	}
	return r
}

func (r *fakePropertyRepo) Create(_ *gorm.DB, p *models.Property) error {
	if p.ID == "" {
		p.ID = "new-property"
	}
	r.properties[p.ID] = p
	r.created = append(r.created, p)
	return nil
}

func (r *fakePropertyRepo) FindByID(_ *gorm.DB, id string) (*models.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, repositories.ErrPropertyNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePropertyRepo) FindWithCriteria(_ *gorm.DB, c repositories.PropertyCriteria) ([]models.Property, error) {
	r.criteria = append(r.criteria, c)
	var out []models.Property
	for _, p := range r.properties {
		if c.LinkedBidderID != "" && (r.links == nil || !r.links.linked(p.ID, c.LinkedBidderID)) {
			continue
		}
		if c.Status != "" && p.Status != c.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePropertyRepo) UpdateVisibility(_ *gorm.DB, id string, s visibility.Settings) error {
	p, ok := r.properties[id]
	if !ok {
		return repositories.ErrPropertyNotFound
	}
	p.VisibilitySettings = s
	return nil
}

func (r *fakePropertyRepo) FindExpired(_ *gorm.DB, now time.Time) ([]models.Property, error) {
	var out []models.Property
	for _, p := range r.properties {
		if p.Status == models.PropertyStatusActive && p.AuctionEnd != nil && !p.AuctionEnd.After(now) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePropertyRepo) UpdateStatus(_ *gorm.DB, id string, status models.PropertyStatus) error {
	p, ok := r.properties[id]
	if !ok {
		return repositories.ErrPropertyNotFound
	}
	p.Status = status
	return nil
}

// ---------------- links ----------------

type fakeLinkRepo struct {
	links []models.PropertyLinkedBidder
	err   error
}

func (r *fakeLinkRepo) linked(propertyID, bidderID string) bool {
	for _, l := range r.links {
		if l.PropertyID == propertyID && l.BidderID == bidderID {
			return true
		}
	}
	return false
}

func (r *fakeLinkRepo) Link(_ *gorm.DB, link *models.PropertyLinkedBidder) error {
	for i, l := range r.links {
		if l.PropertyID == link.PropertyID && l.BidderID == link.BidderID {
			r.links[i].Status = link.Status
			return nil
		}
	}
	r.links = append(r.links, *link)
	return nil
}

func (r *fakeLinkRepo) FindWithBidders(_ *gorm.DB, propertyID string) ([]models.PropertyLinkedBidder, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []models.PropertyLinkedBidder
	for _, l := range r.links {
		if l.PropertyID == propertyID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *fakeLinkRepo) FindLink(_ *gorm.DB, propertyID, bidderID string) (*models.PropertyLinkedBidder, error) {
	for _, l := range r.links {
		if l.PropertyID == propertyID && l.BidderID == bidderID {
			cp := l
			return &cp, nil
		}
	}
	return nil, repositories.ErrBidderNotLinked
}

func (r *fakeLinkRepo) IsLinked(_ *gorm.DB, propertyID, bidderID string) (bool, error) {
	return r.linked(propertyID, bidderID), nil
}

func (r *fakeLinkRepo) UpdateStatus(_ *gorm.DB, propertyID, bidderID string, status models.LinkStatus) error {
	for i, l := range r.links {
		if l.PropertyID == propertyID && l.BidderID == bidderID {
			r.links[i].Status = status
			return nil
		}
	}
	return repositories.ErrBidderNotLinked
}

func link(propertyID string, bidder *models.User) models.PropertyLinkedBidder {
	return models.PropertyLinkedBidder{
		PropertyID: propertyID,
		BidderID:   bidder.ID,
		Status:     models.LinkStatusInvited,
		Bidder:     bidder,
	}
}

// ---------------- bids ----------------

type fakeBidRepo struct {
	bids     []models.Bid
	maxCalls int
}

func (r *fakeBidRepo) Create(_ *gorm.DB, bid *models.Bid) error {
	bid.ID = "bid-new"
	r.bids = append(r.bids, *bid)
	return nil
}

func (r *fakeBidRepo) FindByProperty(_ *gorm.DB, propertyID string) ([]models.Bid, error) {
	var out []models.Bid
	for _, b := range r.bids {
		if b.PropertyID == propertyID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBidRepo) MaxAmountsByProperty(_ *gorm.DB, ids []string) (map[string]int64, error) {
	r.maxCalls++
	wanted := map[string]bool{}
	for _, id := range ids {
		wanted[id] = true
	}
	var rows []models.Bid
	for _, b := range r.bids {
		if wanted[b.PropertyID] {
			rows = append(rows, b)
		}
	}
	return bidding.MaxByProperty(rows), nil
}

// ---------------- alerts ----------------

type fakeAlertRepo struct {
	created []*models.Alert
	err     error
}

func (r *fakeAlertRepo) Create(_ *gorm.DB, a *models.Alert) error {
	if r.err != nil {
		return r.err
	}
	a.ID = "alert-1"
	r.created = append(r.created, a)
	return nil
}

func (r *fakeAlertRepo) FindByProperty(_ *gorm.DB, propertyID string) ([]models.Alert, error) {
	var out []models.Alert
	for _, a := range r.created {
		if a.PropertyID == propertyID {
			out = append(out, *a)
		}
	}
	return out, nil
}

// ---------------- notifications ----------------

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
	failFor map[string]bool
}

func (r *fakeNotificationRepo) CreateNotification(_ *gorm.DB, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFor[n.UserID] {
		return errStoreDown
	}
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) FindUserNotifications(_ *gorm.DB, userID string, c repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range r.created {
		if n.UserID == userID && (!c.UnreadOnly || !n.IsRead) {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(_ *gorm.DB, userID string) (int64, error) {
	var n int64
	for _, x := range r.created {
		if x.UserID == userID && !x.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *fakeNotificationRepo) MarkAsRead(_ *gorm.DB, userID, id string) error {
	for _, x := range r.created {
		if x.ID == id && x.UserID == userID {
			x.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(_ *gorm.DB, userID string) error {
	for _, x := range r.created {
		if x.UserID == userID {
			x.IsRead = true
		}
	}
	return nil
}

// ---------------- email ----------------

type fakeProvider struct {
	mu    sync.Mutex
	sent  []string
	fail  map[string]error
	block bool
}

func (p *fakeProvider) SendText(ctx context.Context, to, _, _ string) error {
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := p.fail[to]; err != nil {
		return err
	}
	p.mu.Lock()
	p.sent = append(p.sent, to)
	p.mu.Unlock()
	return nil
}

func (p *fakeProvider) Validate() error { return nil }
func (p *fakeProvider) Close() error    { return nil }
