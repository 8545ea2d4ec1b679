// Package email delivers notification mail through Resend, SendGrid or SMTP.
package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"clubdir/internal/config"
)

// ErrDisabled is returned by Send when no provider is configured.
var ErrDisabled = errors.New("email is not configured")

const sendTimeout = 15 * time.Second

// Message is one outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message through one provider.
type Sender interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// NewSender picks the first configured provider: Resend, then SendGrid,
// then SMTP. It returns nil when none is configured.
func NewSender(cfg *config.Config, client *http.Client) Sender {
	if client == nil {
		client = &http.Client{Timeout: sendTimeout}
	}
	switch {
	case cfg.ResendAPIKey != "":
		from := cfg.EmailFrom
		if from == "" {
			from = "onboarding@resend.dev"
		}
		return &ResendSender{URL: cfg.ResendAPIURL, APIKey: cfg.ResendAPIKey, From: from, Client: client}
	case cfg.SendGridKey != "":
		return &SendGridSender{URL: cfg.SendGridURL, APIKey: cfg.SendGridKey, From: defaultFrom(cfg), Client: client}
	case cfg.SMTPHost != "" && cfg.SMTPFrom != "":
		return NewSMTPSender(cfg)
	default:
		return nil
	}
}

// defaultFrom is EMAIL_FROM, or no-reply at the site's host.
func defaultFrom(cfg *config.Config) string {
	if cfg.EmailFrom != "" {
		return cfg.EmailFrom
	}
	host := "example.com"
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Hostname() != "" {
		host = u.Hostname()
	}
	return "no-reply@" + host
}

// Service sends mail through a single Sender.
type Service struct {
	sender Sender
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates an email service for the configured provider.
func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return NewServiceWithSender(NewSender(cfg, nil), logger)
}

// NewServiceWithSender wraps an explicit sender. A nil sender disables email.
func NewServiceWithSender(sender Sender, logger *zap.Logger) *Service {
	s := &Service{sender: sender, logger: logger.Named("email")}
	if sender != nil {
		s.logger.Info("email notifications enabled", zap.String("provider", sender.Name()))
	} else {
		s.logger.Info("email notifications disabled (no provider configured)")
	}
	return s
}

// IsEnabled returns true if a provider is configured.
func (s *Service) IsEnabled() bool {
	return s.sender != nil
}

// Provider returns the active provider name, or "none".
func (s *Service) Provider() string {
	if s.sender == nil {
		return "none"
	}
	return s.sender.Name()
}

// Send delivers msg synchronously.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if s.sender == nil {
		return ErrDisabled
	}
	if len(msg.To) == 0 {
		return errors.New("no recipients")
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s: %w", s.sender.Name(), err)
	}
	return nil
}

// SendAsync sends an email in the background (fire and forget with logging).
func (s *Service) SendAsync(msg Message) {
	s.sendLater(func(context.Context) ([]string, error) { return msg.To, nil }, msg)
}

// sendLater resolves recipients and sends off the caller's goroutine.
func (s *Service) sendLater(recipients func(context.Context) ([]string, error), msg Message) {
	if s.sender == nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		to, err := recipients(ctx)
		if err != nil {
			s.logger.Warn("failed to resolve recipients", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if len(to) == 0 {
			s.logger.Debug("no recipients for notification", zap.String("subject", msg.Subject))
			return
		}
		msg.To = to

		if err := s.Send(ctx, msg); err != nil {
			s.logger.Warn("failed to send email", zap.Strings("to", to), zap.Error(err))
			return
		}
		s.logger.Info("email sent", zap.Strings("to", to), zap.String("subject", msg.Subject))
	}()
}

// Wait blocks until background sends finish.
func (s *Service) Wait() {
	s.wg.Wait()
}
