package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction_backend/internal/auth"
	"auction_backend/internal/middleware"
	"auction_backend/internal/models"
	"auction_backend/internal/services"
	"auction_backend/internal/services/dto"
	"auction_backend/internal/validator"
	"auction_backend/internal/visibility"
	"auction_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var testTokens = auth.NewTokenManager("handler-test-secret", time.Hour)

func init() {
	gin.SetMode(gin.TestMode)
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=auction dbname=auction sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func token(t *testing.T, id string, role models.UserRole) string {
	t.Helper()
	tok, err := testTokens.Generate(&models.User{BaseModel: models.BaseModel{ID: id}, Email: id + "@example.test", Role: role})
	require.NoError(t, err)
	return tok
}

type routable interface {
	RegisterRoutes(r *gin.RouterGroup, authMW gin.HandlerFunc)
}

func newRouter(t *testing.T, h routable) *gin.Engine {
	r := gin.New()
	r.Use(middleware.DBMiddleware(testDB(t)))
	h.RegisterRoutes(r.Group("/api/v1"), middleware.AuthMiddleware(testTokens))
	return r
}

func do(r http.Handler, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) apperrors.ErrorCode {
	t.Helper()
	var body struct {
		Error struct {
			Code apperrors.ErrorCode `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error.Code
}

// ---------------- fakes ----------------

type fakeAlertService struct {
	calls   int
	lastReq *dto.SendAlertRequest
	err     error
}

func (s *fakeAlertService) SendAlert(_ context.Context, db *gorm.DB, p *auth.Principal, propertyID string, req *dto.SendAlertRequest) (*dto.SendAlertResponse, error) {
	s.calls++
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SendAlertResponse{
		Success:        true,
		Sent:           2,
		Failed:         []dto.DeliveryFailure{{Email: "b2@example.test", Error: "mailbox full"}},
		AlertID:        "alert-1",
		RecipientCount: 3,
		Notified:       3,
	}, nil
}

func (s *fakeAlertService) ListAlerts(context.Context, *gorm.DB, *auth.Principal, string) ([]*dto.AlertResponse, error) {
	return []*dto.AlertResponse{{ID: "alert-1"}}, nil
}

type fakeProfileService struct {
	patch map[string]interface{}
}

func (s *fakeProfileService) GetVisibilityPreferences(context.Context, *gorm.DB, *auth.Principal) (*dto.VisibilityPreferencesResponse, error) {
	return &dto.VisibilityPreferencesResponse{VisibilityPreferences: visibility.Defaults()}, nil
}

func (s *fakeProfileService) UpdateVisibilityPreferences(_ context.Context, _ *gorm.DB, _ *auth.Principal, patch map[string]interface{}) (*dto.VisibilityPreferencesResponse, error) {
	s.patch = patch
	return &dto.VisibilityPreferencesResponse{VisibilityPreferences: visibility.Defaults().Merge(patch)}, nil
}

// fakePropertyService records the visibility body; other methods are not exercised.
type fakePropertyService struct {
	services.PropertyService
	raw interface{}
}

func (s *fakePropertyService) UpdateVisibility(_ context.Context, _ *gorm.DB, _ *auth.Principal, propertyID string, raw interface{}) (*dto.PropertyResponse, error) {
	s.raw = raw
	return &dto.PropertyResponse{ID: propertyID, VisibilitySettings: visibility.Normalize(raw)}, nil
}

// ---------------- tests ----------------

func TestSendAlert_StatusOrdering(t *testing.T) {
	svc := &fakeAlertService{}
	r := newRouter(t, NewAlertHandler(NewBaseHandler(validator.New()), svc))
	path := "/api/v1/properties/prop-1/alerts"
	valid := `{"subject":"Reminder","message":"Auction closes Friday"}`

	w := do(r, http.MethodPost, path, "", valid)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodPost, path, "not-a-jwt", valid)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, apperrors.CodeUnauthorized, errorCode(t, w))

	// Bidders are refused before the body is looked at.
	w = do(r, http.MethodPost, path, token(t, "b1", models.UserRoleBidder), `{"subject":"  "}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodPost, path, token(t, "c1", models.UserRoleCounty), `{"subject":"   ","message":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(t, w))

	assert.Zero(t, svc.calls)

	svc.err = apperrors.ErrNotFound(nil)
	w = do(r, http.MethodPost, path, token(t, "c1", models.UserRoleCounty), valid)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSendAlert_ResponseShape(t *testing.T) {
	svc := &fakeAlertService{}
	r := newRouter(t, NewAlertHandler(NewBaseHandler(validator.New()), svc))

	w := do(r, http.MethodPost, "/api/v1/properties/prop-1/alerts", token(t, "c1", models.UserRoleCounty),
		`{"subject":"Reminder","message":"Auction closes Friday","bidderIds":["b1","b2"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.JSONEq(t, `{
		"success": true,
		"sent": 2,
		"failed": [{"email":"b2@example.test","error":"mailbox full"}],
		"alertId": "alert-1",
		"recipientCount": 3,
		"notified": 3
	}`, w.Body.String())

	require.NotNil(t, svc.lastReq.BidderIDs)
	assert.Equal(t, []string{"b1", "b2"}, *svc.lastReq.BidderIDs)
}

func TestSendAlert_NullAndEmptyBidderIDs(t *testing.T) {
	svc := &fakeAlertService{}
	r := newRouter(t, NewAlertHandler(NewBaseHandler(validator.New()), svc))
	county := token(t, "c1", models.UserRoleCounty)

	w := do(r, http.MethodPost, "/api/v1/properties/prop-1/alerts", county, `{"subject":"s","message":"m","bidderIds":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.lastReq.BidderIDs)

	w = do(r, http.MethodPost, "/api/v1/properties/prop-1/alerts", county, `{"subject":"s","message":"m","bidderIds":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastReq.BidderIDs)
	assert.Empty(t, *svc.lastReq.BidderIDs)
}

func TestProfileVisibility_PatchPassesRawObject(t *testing.T) {
	svc := &fakeProfileService{}
	r := newRouter(t, NewProfileHandler(NewBaseHandler(validator.New()), svc))
	county := token(t, "c1", models.UserRoleCounty)

	w := do(r, http.MethodPatch, "/api/v1/profile/visibility", county, `{"bidHistory":"1","minBid":"maybe"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]interface{}{"bidHistory": "1", "minBid": "maybe"}, svc.patch)

	var resp dto.VisibilityPreferencesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.VisibilityPreferences.BidHistory)
	assert.True(t, resp.VisibilityPreferences.MinBid)

	// A JSON-encoded object string is decoded like an object.
	w = do(r, http.MethodPatch, "/api/v1/profile/visibility", county, `"{\"minBid\":false}"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, map[string]interface{}{"minBid": false}, svc.patch)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.VisibilityPreferences.MinBid)

	// Well-formed non-object JSON is repaired, not rejected.
	w = do(r, http.MethodPatch, "/api/v1/profile/visibility", county, `[1,2,3]`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.patch)

	w = do(r, http.MethodPatch, "/api/v1/profile/visibility", county, `{broken`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/api/v1/profile/visibility", county, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"visibilityPreferences":{"minBid":true,"currentBid":true,"bidHistory":false,"propertyStatus":true,"bidderList":false,"documents":false}}`, w.Body.String())
}

func TestPropertyVisibility_StringBodyIsDecoded(t *testing.T) {
	svc := &fakePropertyService{}
	r := newRouter(t, NewPropertyHandler(NewBaseHandler(validator.New()), svc))
	county := token(t, "c1", models.UserRoleCounty)

	w := do(r, http.MethodPut, "/api/v1/properties/prop-1/visibility", county, `"{\"minBid\":false}"`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `{"minBid":false}`, svc.raw)

	var resp dto.PropertyResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	want := visibility.Defaults()
	want.MinBid = false
	assert.Equal(t, want, resp.VisibilitySettings)

	w = do(r, http.MethodPut, "/api/v1/properties/prop-1/visibility", token(t, "b1", models.UserRoleBidder), `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
