// Package mealservice coordinates the store, the auth issuer and the planning
// engines behind the HTTP and MCP surfaces.
package mealservice

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/auth"
	"github.com/starford/mealprep/internal/planner"
	"github.com/starford/mealprep/internal/store"
)

// Publisher receives change notifications, e.g. the SSE broker.
type Publisher interface {
	PublishChange(householdID, kind, id string)
}

// Defaults applied to newly created households.
type Defaults struct {
	Timezone   string
	DinnerTime string
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer enables register and login.
func WithIssuer(iss *auth.Issuer) Option {
	return func(s *Service) { s.issuer = iss }
}

// WithHasher overrides the password hasher (tests use a low bcrypt cost).
func WithHasher(h auth.Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithPublisher sends change events to p.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithDefaults sets the timezone and dinner time of new households.
func WithDefaults(d Defaults) Option {
	return func(s *Service) { s.defaults = d }
}

// WithIDs replaces the id generator.
func WithIDs(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// Service implements the meal-planning use cases for one or more households.
type Service struct {
	repo     store.Repository
	issuer   *auth.Issuer
	hasher   auth.Hasher
	events   Publisher
	defaults Defaults
	now      func() time.Time
	newID    func() string
}

// NewService creates a new meal service.
func NewService(repo store.Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		defaults: Defaults{
			Timezone:   planner.DefaultTimezone,
			DinnerTime: planner.DefaultDinnerTime,
		},
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository exposes the underlying store for read-only collaborators.
func (s *Service) Repository() store.Repository {
	return s.repo
}

func (s *Service) publish(householdID, kind, id string) {
	if s.events != nil {
		s.events.PublishChange(householdID, kind, id)
	}
}

// invalid wraps a validation error so callers can match apperr.ErrInvalid.
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
}

func validateInput(v validation.Validatable) error {
	return invalid(v.Validate())
}
