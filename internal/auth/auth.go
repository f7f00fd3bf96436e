// Package auth issues and verifies household-scoped bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/starford/mealprep/internal/apperr"
)

// Claims is the JWT payload: the subject is the user id.
type Claims struct {
	HouseholdID string `json:"household_id"`
	jwt.RegisteredClaims
}

// Principal identifies the caller of a request.
type Principal struct {
	UserID      string
	HouseholdID string
}

// Issuer signs and verifies HS256 tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. ttl must be positive.
func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user.
func (i *Issuer) Issue(userID, householdID string) (string, error) {
	now := i.now()
	claims := Claims{
		HouseholdID: householdID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its principal. Invalid, expired or
// incomplete tokens yield apperr.ErrUnauthorized.
func (i *Issuer) Verify(tokenString string) (Principal, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return Principal{}, fmt.Errorf("auth: %w: %w", apperr.ErrUnauthorized, err)
	}
	if claims.Subject == "" || claims.HouseholdID == "" {
		return Principal{}, fmt.Errorf("auth: %w: incomplete claims", apperr.ErrUnauthorized)
	}
	return Principal{UserID: claims.Subject, HouseholdID: claims.HouseholdID}, nil
}

// Hasher hashes and checks passwords with bcrypt.
type Hasher struct {
	Cost int
}

// Hash returns the bcrypt hash of password.
func (h Hasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(b), nil
}

// Check reports apperr.ErrUnauthorized when password does not match hash.
func (h Hasher) Check(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return apperr.ErrUnauthorized
	}
	if err != nil {
		return fmt.Errorf("auth: %w: %w", apperr.ErrUnauthorized, err)
	}
	return nil
}
