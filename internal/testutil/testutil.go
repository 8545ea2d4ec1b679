// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/brianvoe/gofakeit/v7"

	"clubdir/internal/models"
	"clubdir/internal/store"
	"clubdir/internal/store/pgstore"
)

// TestStore connects to the database named by TEST_DATABASE_URL, applies
// migrations and returns a cleanup function. The test is skipped when the
// variable is unset.
func TestStore(t *testing.T) (*pgstore.Store, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	s, err := pgstore.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := s.RunMigrations(connString); err != nil {
		s.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanup := func() {
		s.Pool.Exec(ctx, "DELETE FROM records")
		s.Close()
	}

	return s, cleanup
}

// Leader returns a principal with the leader role and a random identity.
func Leader() *models.Principal {
	return &models.Principal{UserID: gofakeit.UUID(), Role: models.RoleLeader, Email: gofakeit.Email()}
}

// Admin returns a principal with the admin role and a random identity.
func Admin() *models.Principal {
	return &models.Principal{UserID: gofakeit.UUID(), Role: models.RoleAdmin, Email: gofakeit.Email()}
}

// ClubFields returns a plausible club row with the given status.
func ClubFields(status string) store.Fields {
	return store.Fields{
		"clubId":       gofakeit.UUID(),
		"name":         gofakeit.Company(),
		"description":  gofakeit.Sentence(8),
		"category":     gofakeit.RandomString([]string{"Academic", "Arts", "Sports", "Service"}),
		"contactName":  gofakeit.Name(),
		"contactEmail": gofakeit.Email(),
		"websiteUrl":   gofakeit.URL(),
		"status":       status,
		"submittedAt":  gofakeit.PastDate().UTC().Format("2006-01-02T15:04:05Z07:00"),
		"updatedAt":    gofakeit.PastDate().UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
