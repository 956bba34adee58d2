package email

// Email is one plaintext message to a single recipient.
type Email struct {
	To      string
	Subject string
	Body    string
}

// TemplateData is the input of a message template.
type TemplateData map[string]interface{}
