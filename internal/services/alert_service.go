package services

import (
	"context"
	"errors"
	"strings"

	"auction_backend/internal/auth"
	"auction_backend/internal/logger"
	"auction_backend/internal/metrics"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"
	"auction_backend/internal/services/dto"
	"auction_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AlertService interface {
	// SendAlert runs the whole alert flow: authorize, resolve recipients,
	// email, audit, notify. Email failures are reported, not returned.
	SendAlert(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, req *dto.SendAlertRequest) (*dto.SendAlertResponse, error)
	ListAlerts(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) ([]*dto.AlertResponse, error)
}

type alertService struct {
	propertyRepo  repositories.PropertyRepository
	alertRepo     repositories.AlertRepository
	resolver      RecipientResolver
	dispatcher    AlertDispatcher
	notifications NotificationService
}

func NewAlertService(
	propertyRepo repositories.PropertyRepository,
	alertRepo repositories.AlertRepository,
	resolver RecipientResolver,
	dispatcher AlertDispatcher,
	notifications NotificationService,
) AlertService {
	return &alertService{
		propertyRepo:  propertyRepo,
		alertRepo:     alertRepo,
		resolver:      resolver,
		dispatcher:    dispatcher,
		notifications: notifications,
	}
}

func (s *alertService) SendAlert(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string, req *dto.SendAlertRequest) (*dto.SendAlertResponse, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}
	if !principal.Can(auth.PermAlertsSend) {
		return nil, apperrors.ErrCountyRoleRequired()
	}

	subject := strings.TrimSpace(req.Subject)
	message := strings.TrimSpace(req.Message)
	if details := requiredFields(map[string]string{"subject": subject, "message": message}); details != nil {
		return nil, apperrors.ValidationError(details)
	}

	property, err := s.propertyRepo.FindByID(db, propertyID)
	if err != nil {
		return nil, handlePropertyError(err)
	}

	resolution, err := s.resolver.Resolve(ctx, db, property, req.BidderIDs, principal)
	if err != nil {
		return nil, err
	}
	addresses := resolution.EmailAddresses()

	// From here on the alert runs to completion even if the caller goes away.
	ctx = context.WithoutCancel(ctx)
	db = db.WithContext(ctx)

	result := s.dispatcher.Dispatch(ctx, property, subject, message, addresses)

	alert := &models.Alert{
		PropertyID:     property.ID,
		SentBy:         principal.UserID,
		Subject:        subject,
		Message:        message,
		RecipientCount: len(addresses),
	}
	if err := s.alertRepo.Create(db, alert); err != nil {
		logger.CtxWithError(ctx, "failed to record alert after dispatch", err,
			"property_id", property.ID,
			"sent", result.Sent,
		)
		return nil, apperrors.DatabaseError(err)
	}
	metrics.AlertsTotal.Inc()

	ctx = logger.WithAlertID(ctx, alert.ID)
	notified := s.notifications.NotifyAlert(ctx, db, resolution.NotificationTargets(), property, alert)

	logger.CtxInfo(ctx, "alert issued",
		"property_id", property.ID,
		"recipient_count", alert.RecipientCount,
		"sent", result.Sent,
		"failed", len(result.Failed),
		"notified", notified,
	)

	return &dto.SendAlertResponse{
		Success:        true,
		Sent:           result.Sent,
		Failed:         result.Failed,
		AlertID:        alert.ID,
		RecipientCount: alert.RecipientCount,
		Notified:       notified,
	}, nil
}

func (s *alertService) ListAlerts(ctx context.Context, db *gorm.DB, principal *auth.Principal, propertyID string) ([]*dto.AlertResponse, error) {
	property, err := loadOwnedProperty(db, s.propertyRepo, principal, propertyID)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alertRepo.FindByProperty(db, property.ID)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	out := make([]*dto.AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, &dto.AlertResponse{
			ID:             a.ID,
			PropertyID:     a.PropertyID,
			SentBy:         a.SentBy,
			Subject:        a.Subject,
			Message:        a.Message,
			RecipientCount: a.RecipientCount,
			CreatedAt:      a.CreatedAt,
		})
	}
	return out, nil
}

// loadOwnedProperty authorizes a county principal against the property owner.
func loadOwnedProperty(db *gorm.DB, repo repositories.PropertyRepository, principal *auth.Principal, propertyID string) (*models.Property, error) {
	if principal == nil {
		return nil, apperrors.NewUnauthorizedError("User not authenticated")
	}
	if !principal.IsCounty() {
		return nil, apperrors.ErrCountyRoleRequired()
	}

	property, err := repo.FindByID(db, propertyID)
	if err != nil {
		return nil, handlePropertyError(err)
	}
	if property.CreatedBy != principal.UserID {
		return nil, apperrors.ErrNotPropertyOwner()
	}
	return property, nil
}

func requiredFields(fields map[string]string) map[string]string {
	var details map[string]string
	for name, value := range fields {
		if value != "" {
			continue
		}
		if details == nil {
			details = make(map[string]string)
		}
		details[name] = "This field is required"
	}
	return details
}

func handlePropertyError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) ||
		errors.Is(err, repositories.ErrPropertyNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return apperrors.DatabaseError(err)
}
