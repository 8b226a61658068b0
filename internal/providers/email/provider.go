package email

import "context"

// Attachment rides along a message as a named binary part.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Provider delivers a message once and reports the outcome. No retries;
// callers treat delivery as a single synchronous verdict.
type Provider interface {
	Send(ctx context.Context, to []string, subject, htmlBody string, attachments ...Attachment) error
}

// NoOpProvider is wired when no SMTP host is configured.
type NoOpProvider struct{}

func (p *NoOpProvider) Send(ctx context.Context, to []string, subject, htmlBody string, attachments ...Attachment) error {
	return nil
}
