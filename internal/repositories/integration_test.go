//go:build integration

package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/internal/repositories"
	"github.com/BradenHooton/citywalk/internal/testutil"
)

func TestUserRepository_Ranking_Integration(t *testing.T) {
	ctx := context.Background()

	tdb, err := testutil.SetupTestDatabase(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { tdb.Teardown(ctx) })

	repo := repositories.NewUserRepository(tdb.DB)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	create := func(username, name string, admin bool) {
		_, err := repo.Create(ctx, &models.User{
			Name:           name,
			Username:       username,
			Status:         models.UserStatusActive,
			Colour:         "#" + username,
			IsAdminUseOnly: admin,
		})
		require.NoError(t, err)
	}
	score := func(username string, at ...time.Time) {
		for _, ts := range at {
			_, err := repo.RecordMajorCheckpoint(ctx, username, ts)
			require.NoError(t, err)
		}
	}

	t.Run("ties break on earliest last checkpoint and admins are hidden", func(t *testing.T) {
		require.NoError(t, tdb.CleanupCollections(ctx))

		create("ada", "Ada", false)
		create("bob", "Bob", false)
		create("carla", "Carla", false)
		create("root", "Administrator", true)

		// ada and bob both reach 2, bob gets there first
		score("ada", base, base.Add(2*time.Hour))
		score("bob", base, base.Add(time.Hour))
		score("carla", base.Add(30*time.Minute))
		score("root", base, base, base, base, base)

		entries, err := repo.Ranking(ctx, 10)
		require.NoError(t, err)

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		assert.Equal(t, []string{"Bob", "Ada", "Carla"}, names)
		assert.Equal(t, 2, entries[0].CheckpointsCompleted)
		assert.Equal(t, 2, entries[1].CheckpointsCompleted)
		assert.Equal(t, 1, entries[2].CheckpointsCompleted)
		assert.Equal(t, "#bob", entries[0].Colour)
	})

	t.Run("limit applies after sorting", func(t *testing.T) {
		require.NoError(t, tdb.CleanupCollections(ctx))

		create("ada", "Ada", false)
		create("bob", "Bob", false)
		score("bob", base, base.Add(time.Minute), base.Add(2*time.Minute))
		score("ada", base)

		entries, err := repo.Ranking(ctx, 1)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Bob", entries[0].Name)
		assert.Equal(t, 3, entries[0].CheckpointsCompleted)
	})
}
