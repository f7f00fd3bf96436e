package auth

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/mealprep/internal/apperr"
)

func TestIssueAndVerify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	tok, err := iss.Issue("u1", "hh1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	p, err := iss.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.UserID != "u1" || p.HouseholdID != "hh1" {
		t.Errorf("principal = %+v", p)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	tok, _ := NewIssuer("one", time.Hour).Issue("u1", "hh1")
	if _, err := NewIssuer("two", time.Hour).Verify(tok); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	iss := NewIssuer("secret", time.Minute)
	past := time.Now().Add(-time.Hour)
	iss.now = func() time.Time { return past }
	tok, err := iss.Issue("u1", "hh1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	iss.now = time.Now
	if _, err := iss.Verify(tok); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	if _, err := NewIssuer("secret", time.Hour).Verify("not-a-token"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("err = %v", err)
	}
}

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := h.Check(hash, "hunter2"); err != nil {
		t.Errorf("Check(correct) = %v", err)
	}
	if err := h.Check(hash, "hunter3"); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("Check(wrong) = %v", err)
	}
}
