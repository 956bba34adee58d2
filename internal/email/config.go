package email

import "time"

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	UseTLS    bool
	Timeout   time.Duration
}

// DefaultConfig holds the submission port and send timeout. Host stays empty so that,
// without a configured relay, NewProvider falls back to the log provider.
func DefaultConfig() *SMTPConfig {
	return &SMTPConfig{
		Port:    587,
		Timeout: 15 * time.Second,
	}
}
