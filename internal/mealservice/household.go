package mealservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/models"
)

// TokenType is returned alongside every access token.
const TokenType = "bearer"

// Session is the result of register and login.
type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	User        models.User `json:"user"`
}

// Register creates a user together with a fresh household and signs them in.
func (s *Service) Register(ctx context.Context, in Credentials) (*Session, error) {
	if s.issuer == nil {
		return nil, fmt.Errorf("%w: accounts are disabled", apperr.ErrInvalid)
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetUserByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperr.ErrAlreadyExists)
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now()
	hh := models.Household{
		ID:              s.newID(),
		Name:            householdName(in.Email),
		Timezone:        s.defaults.Timezone,
		DinnerTimeLocal: s.defaults.DinnerTime,
		CreatedAt:       now,
	}
	if err := s.repo.CreateHousehold(ctx, hh); err != nil {
		return nil, err
	}
	user := models.User{
		ID:           s.newID(),
		Email:        in.Email,
		PasswordHash: hash,
		HouseholdID:  hh.ID,
		CreatedAt:    now,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		// Another registration took the email after the lookup above.
		if delErr := s.repo.DeleteHousehold(ctx, hh.ID); delErr != nil && !errors.Is(delErr, apperr.ErrNotFound) {
			return nil, errors.Join(err, delErr)
		}
		return nil, err
	}
	return s.session(user)
}

// Login checks the password and returns a new token.
func (s *Service) Login(ctx context.Context, in Credentials) (*Session, error) {
	if s.issuer == nil {
		return nil, fmt.Errorf("%w: accounts are disabled", apperr.ErrInvalid)
	}
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, apperr.ErrUnauthorized
	}
	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, apperr.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Check(user.PasswordHash, in.Password); err != nil {
		return nil, err
	}
	return s.session(*user)
}

func (s *Service) session(user models.User) (*Session, error) {
	token, err := s.issuer.Issue(user.ID, user.HouseholdID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, TokenType: TokenType, User: user}, nil
}

// EnsureHousehold creates the household with the configured defaults unless it exists.
func (s *Service) EnsureHousehold(ctx context.Context, id, name string) (*models.Household, error) {
	hh, err := s.repo.GetHousehold(ctx, id)
	if err == nil {
		return hh, nil
	}
	if !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	if name == "" {
		name = id
	}
	created := models.Household{
		ID:              id,
		Name:            name,
		Timezone:        s.defaults.Timezone,
		DinnerTimeLocal: s.defaults.DinnerTime,
		CreatedAt:       s.now(),
	}
	if err := s.repo.CreateHousehold(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetHousehold returns the household or apperr.ErrNotFound.
func (s *Service) GetHousehold(ctx context.Context, householdID string) (*models.Household, error) {
	return s.repo.GetHousehold(ctx, householdID)
}

// UpdateHousehold applies the non-nil fields of u.
func (s *Service) UpdateHousehold(ctx context.Context, householdID string, u HouseholdUpdate) (*models.Household, error) {
	if err := validateInput(&u); err != nil {
		return nil, err
	}
	hh, err := s.repo.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		hh.Name = *u.Name
	}
	if u.Timezone != nil {
		hh.Timezone = *u.Timezone
	}
	if u.DinnerTimeLocal != nil {
		hh.DinnerTimeLocal = *u.DinnerTimeLocal
	}
	if err := s.repo.UpdateHousehold(ctx, *hh); err != nil {
		return nil, err
	}
	s.publish(householdID, "household.updated", householdID)
	return hh, nil
}

func householdName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local + "'s household"
}
