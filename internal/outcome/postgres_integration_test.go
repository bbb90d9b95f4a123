package outcome

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestPostgresStore_Integration exercises the real postgres backend,
// including the ON CONFLICT dedup path. Requires Docker; skipped with -short.
func TestPostgresStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}()

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://testuser:testpass@%s:%d/testdb?sslmode=disable", host, port.Int())
	store, err := NewPostgresStoreFromURL(url)
	require.NoError(t, err)
	defer store.Close()

	// The schema normally comes from migrations; apply it directly here.
	_, err = store.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS outcomes (
			id BIGSERIAL PRIMARY KEY,
			content_hash TEXT UNIQUE NOT NULL,
			denial_reason TEXT NOT NULL DEFAULT 'unknown',
			location TEXT NOT NULL DEFAULT 'unknown',
			cohort TEXT NOT NULL DEFAULT 'unknown',
			claim_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			outcome INTEGER NOT NULL DEFAULT 0,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	require.NoError(t, err)

	in := Input{
		DenialReason: "experimental treatment",
		Location:     "73301",
		Cohort:       "age_60",
		ClaimAmount:  18000.0,
		Outcome:      0,
	}

	require.NoError(t, store.Add(ctx, in))
	require.NoError(t, store.Add(ctx, in), "duplicate insert must be a no-op")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, ShortDigest("73301", "age_60", "experimental treatment"), records[0].ContentHash)
}
