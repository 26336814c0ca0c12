package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/oklog/ulid/v2"

	"github.com/ignitoosolutions/ignito1/internal/domain"
	"github.com/ignitoosolutions/ignito1/internal/platform/metrics"
	"github.com/ignitoosolutions/ignito1/internal/repositories"
)

var errContactRepositoryRequired = errors.New("contact service: repository is required")

// ErrContactMissingFields indicates name, email or message was empty.
var ErrContactMissingFields = errors.New("contact service: all fields are required")

// ContactServiceDeps wires the contact service.
type ContactServiceDeps struct {
	Repository  repositories.ContactRepository
	Metrics     *metrics.Metrics
	Clock       func() time.Time
	Logger      func(context.Context, string, map[string]any)
	IDGenerator func() string
}

type contactService struct {
	repo    repositories.ContactRepository
	metrics *metrics.Metrics
	policy  *bluemonday.Policy
	now     func() time.Time
	logger  func(context.Context, string, map[string]any)
	newID   func() string
}

// NewContactService constructs a ContactService enforcing dependency validation.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Repository == nil {
		return nil, errContactRepositoryRequired
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	return &contactService{
		repo:    deps.Repository,
		metrics: deps.Metrics,
		policy:  bluemonday.StrictPolicy(),
		now:     func() time.Time { return clock().UTC() },
		logger:  logger,
		newID:   idGen,
	}, nil
}

// SubmitContact stores the request with markup stripped from every field.
func (s *contactService) SubmitContact(ctx context.Context, cmd SubmitContactCommand) (domain.Contact, error) {
	contact := domain.Contact{
		Name:    s.plain(cmd.Name),
		Email:   s.plain(cmd.Email),
		Message: s.plain(cmd.Message),
	}
	if contact.Name == "" || contact.Email == "" || contact.Message == "" {
		return domain.Contact{}, ErrContactMissingFields
	}
	contact.ID = s.newID()
	contact.CreatedAt = s.now()

	if err := s.repo.Insert(ctx, contact); err != nil {
		return domain.Contact{}, fmt.Errorf("contact service: store contact: %w", err)
	}
	s.metrics.ContactReceived()
	s.logger(ctx, "contact.received", map[string]any{"contactId": contact.ID})
	return contact, nil
}

// plain strips markup and leaves text unescaped; templates escape on output.
func (s *contactService) plain(value string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(value)))
}

// ListContacts returns the most recent contact requests first.
func (s *contactService) ListContacts(ctx context.Context, limit int) ([]domain.Contact, error) {
	return s.repo.List(ctx, limit)
}
