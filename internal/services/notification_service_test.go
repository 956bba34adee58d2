package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"auction_backend/internal/models"
	"auction_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyAlert_Shape(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo)

	property := &models.Property{BaseModel: models.BaseModel{ID: "prop-1"}, Address: "12 Oak St"}
	alert := &models.Alert{ID: "alert-9", Message: strings.Repeat("a", 200)}

	n := svc.NotifyAlert(context.Background(), testDB(t), []string{"u1", "u2"}, property, alert)
	require.Equal(t, 2, n)

	got := repo.created[0]
	assert.Equal(t, models.NotificationTypeAlert, got.Type)
	assert.Equal(t, "Alert: 12 Oak St", got.Title)
	assert.Equal(t, "/properties/prop-1", got.Link)
	assert.False(t, got.IsRead)

	assert.Equal(t, 160, utf8.RuneCountInString(got.Message))
	assert.True(t, strings.HasSuffix(got.Message, "..."))
	assert.Equal(t, strings.Repeat("a", 157), strings.TrimSuffix(got.Message, "..."))

	var data map[string]string
	require.NoError(t, json.Unmarshal(got.Data, &data))
	assert.Equal(t, map[string]string{"propertyId": "prop-1", "alertId": "alert-9"}, data)
}

func TestNotifyAlert_TitleFallback(t *testing.T) {
	repo := &fakeNotificationRepo{}
	property := &models.Property{BaseModel: models.BaseModel{ID: "prop-1"}, Address: "   "}

	NewNotificationService(repo).NotifyAlert(context.Background(), testDB(t), []string{"u1"}, property, &models.Alert{ID: "a", Message: "short"})

	require.Len(t, repo.created, 1)
	assert.Equal(t, "Property alert", repo.created[0].Title)
	assert.Equal(t, "short", repo.created[0].Message)
}

func TestTruncateMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: strings.Repeat("x", 160), want: strings.Repeat("x", 160)},
		{in: strings.Repeat("x", 161), want: strings.Repeat("x", 157) + "..."},
		{in: strings.Repeat("é", 170), want: strings.Repeat("é", 157) + "..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncateMessage(tt.in, 160))
	}
}

func TestNotificationInbox(t *testing.T) {
	repo := &fakeNotificationRepo{created: []*models.Notification{
		{BaseModel: models.BaseModel{ID: "n1"}, UserID: "u1", Type: "alert", Title: "t", Data: []byte(`{"propertyId":"p"}`)},
		{BaseModel: models.BaseModel{ID: "n2"}, UserID: "u1", Type: "alert", Title: "t"},
		{BaseModel: models.BaseModel{ID: "n3"}, UserID: "u2", Type: "alert", Title: "t"},
	}}
	svc := NewNotificationService(repo)
	ctx, db := context.Background(), testDB(t)

	list, err := svc.GetUserNotifications(ctx, db, "u1", repositories.NotificationCriteria{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)
	assert.Equal(t, "p", list.Notifications[0].Data["propertyId"])

	require.NoError(t, svc.MarkAsRead(ctx, db, "u1", "n1"))
	count, err := svc.GetUnreadCount(ctx, db, "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count.Count)

	err = svc.MarkAsRead(ctx, db, "u1", "n3")
	requireAppError(t, err, http.StatusNotFound)

	require.NoError(t, svc.MarkAllAsRead(ctx, db, "u1"))
	count, err = svc.GetUnreadCount(ctx, db, "u1")
	require.NoError(t, err)
	assert.Zero(t, count.Count)
}
