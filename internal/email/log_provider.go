package email

import (
	"context"

	"auction_backend/internal/logger"
)

// LogProvider writes messages to the log instead of sending them.
// It backs development setups without an SMTP relay.
type LogProvider struct{}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) SendText(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logger.CtxInfo(ctx, "email (log provider)", "to", to, "subject", subject, "body_bytes", len(body))
	return nil
}

func (p *LogProvider) Validate() error { return nil }

func (p *LogProvider) Close() error { return nil }

// NewProvider picks SMTP when a host is configured and logging otherwise.
func NewProvider(config *SMTPConfig) Provider {
	if config == nil || config.Host == "" {
		return NewLogProvider()
	}
	return NewSMTPProvider(config)
}
