package services

import (
	"context"
	"fmt"
	"time"

	"auction_backend/internal/email"
	"auction_backend/internal/logger"
	"auction_backend/internal/metrics"
	"auction_backend/internal/models"
	"auction_backend/internal/services/dto"

	"golang.org/x/sync/errgroup"
)

// DispatchResult reports per-address email outcomes. Failed follows the
// order of the input addresses.
type DispatchResult struct {
	Sent   int
	Failed []dto.DeliveryFailure
}

type AlertDispatcher interface {
	// Dispatch sends one message per unique address. It never fails as a
	// whole; transport errors are reported in the result.
	Dispatch(ctx context.Context, property *models.Property, subject, message string, addresses []string) *DispatchResult
}

type DispatcherConfig struct {
	BaseURL     string
	SendTimeout time.Duration
	MaxParallel int
}

type alertDispatcher struct {
	provider  email.Provider
	templates *email.TemplateManager
	cfg       DispatcherConfig
}

func NewAlertDispatcher(provider email.Provider, templates *email.TemplateManager, cfg DispatcherConfig) AlertDispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 15 * time.Second
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 1
	}
	return &alertDispatcher{
		provider:  provider,
		templates: templates,
		cfg:       cfg,
	}
}

func (d *alertDispatcher) Dispatch(ctx context.Context, property *models.Property, subject, message string, addresses []string) *DispatchResult {
	addresses = uniqueEmails(addresses)
	result := &DispatchResult{Failed: []dto.DeliveryFailure{}}
	if len(addresses) == 0 {
		return result
	}

	body, err := d.templates.RenderAlert(email.AlertData{
		Title:    property.DisplayName(),
		ParcelID: property.ParcelID,
		Message:  message,
		Link:     PropertyURL(d.cfg.BaseURL, property.ID),
	})
	if err != nil {
		logger.CtxWithError(ctx, "failed to render alert email", err, "property_id", property.ID)
		for _, addr := range addresses {
			result.Failed = append(result.Failed, dto.DeliveryFailure{Email: addr, Error: err.Error()})
			metrics.RecordEmail(false)
		}
		return result
	}

	errs := make([]error, len(addresses))

	var g errgroup.Group
	g.SetLimit(d.cfg.MaxParallel)

	for i, addr := range addresses {
		g.Go(func() error {
			errs[i] = d.send(ctx, addr, subject, body)
			return nil
		})
	}
	_ = g.Wait()

	for i, addr := range addresses {
		if errs[i] != nil {
			logger.CtxWarn(ctx, "alert email failed", "email", addr, "error", errs[i].Error())
			result.Failed = append(result.Failed, dto.DeliveryFailure{Email: addr, Error: errs[i].Error()})
			metrics.RecordEmail(false)
			continue
		}
		result.Sent++
		metrics.RecordEmail(true)
	}

	logger.CtxInfo(ctx, "alert emails dispatched",
		"property_id", property.ID,
		"sent", result.Sent,
		"failed", len(result.Failed),
	)
	return result
}

func (d *alertDispatcher) send(ctx context.Context, to, subject, body string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("email provider panic: %v", r)
		}
	}()

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	return d.provider.SendText(sendCtx, to, subject, body)
}

// PropertyURL is the deep link to a property page.
func PropertyURL(baseURL, propertyID string) string {
	return baseURL + PropertyPath(propertyID)
}

func PropertyPath(propertyID string) string {
	return "/properties/" + propertyID
}
