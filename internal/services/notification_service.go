package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"auction_backend/internal/logger"
	"auction_backend/internal/metrics"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"
	"auction_backend/internal/services/dto"
	"auction_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	notificationMessageLimit = 160
	ellipsis                 = "..."
)

type NotificationService interface {
	// NotifyAlert writes one alert notification per target and returns how
	// many were stored. Failures are logged and skipped.
	NotifyAlert(ctx context.Context, db *gorm.DB, targets []string, property *models.Property, alert *models.Alert) int

	GetUserNotifications(ctx context.Context, db *gorm.DB, userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, db *gorm.DB, userID string) (*dto.UnreadCountResponse, error)
	MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) error
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
}

func NewNotificationService(notificationRepo repositories.NotificationRepository) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
	}
}

func (s *notificationService) NotifyAlert(ctx context.Context, db *gorm.DB, targets []string, property *models.Property, alert *models.Alert) int {
	data, err := json.Marshal(map[string]string{
		"propertyId": property.ID,
		"alertId":    alert.ID,
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to encode notification data", err)
		return 0
	}

	title := alertTitle(property.Address)
	message := truncateMessage(alert.Message, notificationMessageLimit)
	link := PropertyPath(property.ID)

	created := 0
	for _, userID := range targets {
		notification := &models.Notification{
			UserID:  userID,
			Type:    models.NotificationTypeAlert,
			Title:   title,
			Message: message,
			Link:    link,
			Data:    datatypes.JSON(data),
			IsRead:  false,
		}

		if err := s.notificationRepo.CreateNotification(db, notification); err != nil {
			logger.CtxWithError(ctx, "failed to create alert notification", err, "target_user_id", userID)
			metrics.RecordNotification(false)
			continue
		}
		metrics.RecordNotification(true)
		created++
	}

	return created
}

func (s *notificationService) GetUserNotifications(ctx context.Context, db *gorm.DB, userID string, criteria repositories.NotificationCriteria) (*dto.NotificationListResponse, error) {
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 {
		criteria.PageSize = 20
	}

	notifications, total, err := s.notificationRepo.FindUserNotifications(db, userID, criteria)
	if err != nil {
		return nil, handleNotificationError(err)
	}

	items := make([]*dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		items = append(items, toNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: items,
		Total:         total,
		Page:          criteria.Page,
		PageSize:      criteria.PageSize,
	}, nil
}

func (s *notificationService) GetUnreadCount(ctx context.Context, db *gorm.DB, userID string) (*dto.UnreadCountResponse, error) {
	count, err := s.notificationRepo.GetUnreadCount(db, userID)
	if err != nil {
		return nil, handleNotificationError(err)
	}
	return &dto.UnreadCountResponse{Count: count}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, db *gorm.DB, userID, notificationID string) error {
	if err := s.notificationRepo.MarkAsRead(db, userID, notificationID); err != nil {
		return handleNotificationError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, db *gorm.DB, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(db, userID); err != nil {
		return handleNotificationError(err)
	}
	return nil
}

func alertTitle(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return "Property alert"
	}
	return "Alert: " + address
}

// truncateMessage caps s at limit runes, ending in "..." when shortened.
func truncateMessage(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

func toNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	resp := &dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(n.Data, &data); err == nil {
			resp.Data = data
		}
	}
	return resp
}

func handleNotificationError(err error) error {
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.DatabaseError(err)
}
