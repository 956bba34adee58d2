package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeSent    = "sent"
	OutcomeFailed  = "failed"
	OutcomeCreated = "created"
)

var (
	AlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auction_alerts_total",
		Help: "Alerts issued and audited.",
	})

	AlertEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_alert_emails_total",
		Help: "Alert email deliveries by outcome.",
	}, []string{"outcome"})

	AlertNotifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auction_alert_notifications_total",
		Help: "In-app alert notifications by outcome.",
	}, []string{"outcome"})
)

func RecordEmail(ok bool) {
	if ok {
		AlertEmails.WithLabelValues(OutcomeSent).Inc()
		return
	}
	AlertEmails.WithLabelValues(OutcomeFailed).Inc()
}

func RecordNotification(ok bool) {
	if ok {
		AlertNotifications.WithLabelValues(OutcomeCreated).Inc()
		return
	}
	AlertNotifications.WithLabelValues(OutcomeFailed).Inc()
}
