package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"auction_backend/internal/auth"
	"auction_backend/internal/logger"
	"auction_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("mw-secret", time.Hour)
	other := auth.NewTokenManager("other-secret", time.Hour)

	var seen *auth.Principal
	var ctxUser string
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		seen = GetPrincipal(c)
		ctxUser = logger.GetUserID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	user := &models.User{BaseModel: models.BaseModel{ID: "u1"}, Email: "clerk@county.test", Role: models.UserRoleCounty}
	good, err := tokens.Generate(user)
	require.NoError(t, err)
	forged, err := other.Generate(user)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + good, http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"foreign signature", "Bearer " + forged, http.StatusUnauthorized},
		{"valid", "Bearer " + good, http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, serve(r, req).Code)
		})
	}

	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserID)
	assert.Equal(t, models.UserRoleCounty, seen.Role)
	assert.Equal(t, "u1", ctxUser)
}

func TestRoleMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager("mw-secret", time.Hour)
	r := gin.New()
	r.GET("/county", AuthMiddleware(tokens), RoleMiddleware(models.UserRoleCounty), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/bare", RoleMiddleware(models.UserRoleCounty), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	bearer := func(role models.UserRole) string {
		tok, err := tokens.Generate(&models.User{BaseModel: models.BaseModel{ID: "x"}, Role: role})
		require.NoError(t, err)
		return "Bearer " + tok
	}

	req := httptest.NewRequest(http.MethodGet, "/county", nil)
	req.Header.Set("Authorization", bearer(models.UserRoleBidder))
	w := serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "County role required")

	req = httptest.NewRequest(http.MethodGet, "/county", nil)
	req.Header.Set("Authorization", bearer(models.UserRoleCounty))
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/bare", nil)).Code)
}

func TestRequestIDMiddleware(t *testing.T) {
	var inCtx string
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		inCtx = logger.GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), inCtx)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "upstream-1")
	w = serve(r, req)
	assert.Equal(t, "upstream-1", w.Header().Get("X-Request-ID"))
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"https://county.example"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://county.example")
	w := serve(r, req)
	assert.Equal(t, "https://county.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://elsewhere.example")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}
