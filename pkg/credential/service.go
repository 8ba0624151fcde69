package credential

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/idkit/pkg/email"
	"github.com/dmitrymomot/idkit/pkg/logger"
	"github.com/dmitrymomot/idkit/pkg/token"
)

// Service implements the credential token lifecycle against an external
// user directory.
type Service struct {
	users  UserDirectory
	codec  *token.Codec
	mailer email.EmailSender
	logger *slog.Logger

	confirmTTL     time.Duration
	resetTTL       time.Duration
	emailChangeTTL time.Duration
	bcryptCost     int
}

// Option configures a Service during construction.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		s.logger = log
	}
}

// WithMailer enables fire-and-forget email delivery for issued tokens.
// Without a mailer the Issue/Request operations still return the token;
// delivery is then the caller's concern.
func WithMailer(mailer email.EmailSender) Option {
	return func(s *Service) {
		s.mailer = mailer
	}
}

// WithConfirmationTTL sets the validity window for confirmation tokens.
func WithConfirmationTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.confirmTTL = ttl
	}
}

// WithResetTTL sets the validity window for password reset tokens.
func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.resetTTL = ttl
	}
}

// WithEmailChangeTTL sets the validity window for email change tokens.
func WithEmailChangeTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.emailChangeTTL = ttl
	}
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

// New creates a credential service. The codec carries the signing secret;
// the service never sees the key itself.
func New(users UserDirectory, codec *token.Codec, opts ...Option) *Service {
	s := &Service{
		users:          users,
		codec:          codec,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		confirmTTL:     time.Hour,
		resetTTL:       time.Hour,
		emailChangeTTL: time.Hour,
		bcryptCost:     bcrypt.DefaultCost,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// sendMail dispatches a notification email in a background goroutine.
// Delivery failure is logged and never surfaces to the credential
// operation that triggered it.
func (s *Service) sendMail(to, subject, tag, bodyHTML string) {
	if s.mailer == nil {
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("mail dispatch panicked",
					slog.Any("panic", r),
					logger.Component("credential"),
				)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.mailer.SendEmail(ctx, email.SendEmailParams{
			SendTo:   to,
			Subject:  subject,
			BodyHTML: bodyHTML,
			Tag:      tag,
		}); err != nil {
			s.logger.Error("failed to send email",
				slog.String("tag", tag),
				logger.Error(err),
				logger.Component("credential"),
			)
		}
	}()
}

// normalizeEmail lowercases and trims an email address for lookups and
// storage. Addresses are compared case-insensitively throughout.
func normalizeEmail(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
