package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"
)

// SMTPProvider sends mail through an SMTP relay. gomail composes the message; the
// conversation runs on a connection whose deadline follows the caller's context.
type SMTPProvider struct {
	config    *SMTPConfig
	tlsConfig *tls.Config
}

func NewSMTPProvider(config *SMTPConfig) *SMTPProvider {
	return &SMTPProvider{
		config:    config,
		tlsConfig: &tls.Config{ServerName: config.Host},
	}
}

// SendText sends one message. The whole conversation, dial included, ends when ctx does;
// config.Timeout applies when ctx carries no deadline.
func (p *SMTPProvider) SendText(ctx context.Context, to, subject, body string) error {
	if err := p.Validate(); err != nil {
		return err
	}

	if p.config.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
			defer cancel()
		}
	}

	if err := p.send(ctx, to, p.buildMessage(to, subject, body)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("smtp send to %s: %w", to, ctxErr)
		}
		// The connection deadline can fire just before ctx reports it.
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return fmt.Errorf("smtp send to %s: %w", to, context.DeadlineExceeded)
		}
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

func (p *SMTPProvider) send(ctx context.Context, to string, m *gomail.Message) error {
	conn, err := p.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return err
		}
	}
	// Unblocks any pending read or write once ctx is done.
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	c, err := smtp.NewClient(conn, p.config.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if !p.implicitTLS() {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(p.tlsConfig); err != nil {
				return err
			}
		}
	}
	if p.config.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", p.config.Username, p.config.Password, p.config.Host)); err != nil {
				return err
			}
		}
	}

	if err := c.Mail(p.config.FromEmail); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := m.WriteTo(w); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// Port 465 speaks implicit TLS; other ports upgrade with STARTTLS when offered.
func (p *SMTPProvider) implicitTLS() bool {
	return p.config.UseTLS && p.config.Port == 465
}

func (p *SMTPProvider) dial(ctx context.Context) (net.Conn, error) {
	addr := net.JoinHostPort(p.config.Host, strconv.Itoa(p.config.Port))
	if p.implicitTLS() {
		d := &tls.Dialer{Config: p.tlsConfig}
		return d.DialContext(ctx, "tcp", addr)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

func (p *SMTPProvider) buildMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	if p.config.FromName != "" {
		m.SetAddressHeader("From", p.config.FromEmail, p.config.FromName)
	} else {
		m.SetHeader("From", p.config.FromEmail)
	}
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	return m
}

func (p *SMTPProvider) Validate() error {
	if p.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}

	if p.config.Port <= 0 || p.config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.config.Port)
	}

	if p.config.FromEmail == "" {
		return fmt.Errorf("sender address is required")
	}

	return nil
}

func (p *SMTPProvider) Close() error {
	return nil
}
