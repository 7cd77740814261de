package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedData(t *testing.T) {
	pool := getTestPool(t)
	dbURL := getTestDBURL()
	ctx := context.Background()

	// Clean and migrate
	_ = RollbackMigrations(dbURL)
	require.NoError(t, RunMigrations(dbURL))
	t.Cleanup(func() { _ = RollbackMigrations(dbURL) })

	t.Run("seed produces a complete period", func(t *testing.T) {
		require.NoError(t, SeedData(ctx, pool))

		var periods int
		require.NoError(t, pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM settlement_periods WHERE key = $1", DemoPeriodKey).Scan(&periods))
		assert.Equal(t, 1, periods)

		var quotas int
		require.NoError(t, pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM quota_allocations WHERE period_key = $1", DemoPeriodKey).Scan(&quotas))
		assert.Equal(t, len(vessels), quotas)

		var landings, deductions int
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM landings").Scan(&landings))
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM deductions").Scan(&deductions))
		assert.Greater(t, landings, 30)
		assert.Greater(t, deductions, 15)

		var logoSize int
		require.NoError(t, pool.QueryRow(ctx,
			"SELECT COALESCE(length(logo), 0) FROM companies WHERE id = $1", DemoCompanyID).Scan(&logoSize))
		assert.Greater(t, logoSize, 0)
	})

	t.Run("seed is idempotent", func(t *testing.T) {
		var before int
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM landings").Scan(&before))

		require.NoError(t, SeedData(ctx, pool))

		var after int
		require.NoError(t, pool.QueryRow(ctx, "SELECT COUNT(*) FROM landings").Scan(&after))
		assert.Equal(t, before, after)
	})

	t.Run("product name fills empty descriptions", func(t *testing.T) {
		var bare int
		require.NoError(t, pool.QueryRow(ctx,
			"SELECT COUNT(*) FROM deductions WHERE description = '' AND product_name IS NULL").Scan(&bare))
		assert.Zero(t, bare)
	})
}
