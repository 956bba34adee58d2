package email

import "context"

// Provider delivers plaintext email.
type Provider interface {
	// SendText delivers one message. It must return once ctx is done.
	SendText(ctx context.Context, to, subject, body string) error

	// Validate checks the provider configuration.
	Validate() error

	Close() error
}

// TemplateRenderer renders named message bodies.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
