// Package testutil provides shared test helpers for stores, services and catalogs.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/mealprep/internal/auth"
	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/parser"
	"github.com/starford/mealprep/internal/storage"
	"github.com/starford/mealprep/internal/store"
)

// Household is the id seeded by TestService.
const Household = "test-household"

// TestStore creates a temporary SQLite database that is automatically cleaned up.
func TestStore(t *testing.T) *store.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mealprep-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() {
		os.Remove(dbFile.Name())
		os.Remove(dbFile.Name() + "-wal")
		os.Remove(dbFile.Name() + "-shm")
	})

	db, err := store.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestService returns a service over a fresh store with accounts enabled,
// a cheap bcrypt cost and the Household household already created.
func TestService(t *testing.T, opts ...mealservice.Option) (*mealservice.Service, *store.DB) {
	t.Helper()
	db := TestStore(t)
	base := []mealservice.Option{
		mealservice.WithIssuer(auth.NewIssuer("test-secret", time.Hour)),
		mealservice.WithHasher(auth.Hasher{Cost: bcrypt.MinCost}),
	}
	svc := mealservice.NewService(db, append(base, opts...)...)
	if _, err := svc.EnsureHousehold(context.Background(), Household, "Test"); err != nil {
		t.Fatal(err)
	}
	return svc, db
}

// TestCatalog creates a temporary catalog directory with a storage.Provider
// accepting recipe documents.
func TestCatalog(t *testing.T) (string, storage.Provider) {
	t.Helper()
	dir := t.TempDir()
	src, err := storage.NewFS(dir, parser.Supported)
	if err != nil {
		t.Fatal(err)
	}
	return dir, src
}
