package shelf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animeshelf/pkg/database"
	"animeshelf/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db)
}

func seedEntry(t *testing.T, r *Repo, e models.ShelfEntry) {
	t.Helper()
	require.NoError(t, r.Upsert(context.Background(), e))
}

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestUpsertThenGet(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 2, Rating: 9,
		Genres: []string{"Action", "Sci-Fi"}, Studios: []string{"Sunrise"},
		Type: "TV", Year: 1998, Season: "spring",
	})

	got, err := r.Get(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Cowboy Bebop", got.Title)
	assert.Equal(t, 26, got.TotalEpisodes)
	assert.Equal(t, 9, got.Rating)
	assert.Equal(t, []string{"Action", "Sci-Fi"}, got.Genres)
	assert.False(t, got.AddedAt.IsZero())
}

func TestGetMissingReturnsNil(t *testing.T) {
	r := newTestRepo(t)
	got, err := r.Get(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpsertReplacesWithoutDuplicating(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{MalID: 5, Title: "Cowboy Bebop", Status: models.StatusWatching, CurrentEpisode: 1})
	seedEntry(t, r, models.ShelfEntry{MalID: 5, Title: "Cowboy Bebop", Status: models.StatusCompleted, CurrentEpisode: 26})

	total, err := r.Count(context.Background(), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	got, err := r.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)
}

func TestUpdateEntryEmitsOneEventPerCrossedEpisode(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 2,
	})

	updated, err := r.UpdateEntry(context.Background(), 5, models.EntryPatch{CurrentEpisode: intPtr(5)}, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, 5, updated.CurrentEpisode)

	events, total, err := r.ListWatchEvents(context.Background(), 5, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	// newest first within the same timestamp means episode DESC
	episodes := make([]int, 0, len(events))
	for _, ev := range events {
		episodes = append(episodes, ev.Episode)
	}
	assert.Equal(t, []int{5, 4, 3}, episodes)
}

func TestUpdateEntryRegressionEmitsNoEvents(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 10,
	})

	updated, err := r.UpdateEntry(context.Background(), 5, models.EntryPatch{CurrentEpisode: intPtr(4)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.CurrentEpisode)

	_, total, err := r.ListWatchEvents(context.Background(), 5, 50, 0)
	require.NoError(t, err)
	assert.Zero(t, total, "lowering progress must not log watch events")
}

func TestUpdateEntryClampsToTotal(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 2,
	})

	updated, err := r.UpdateEntry(context.Background(), 5, models.EntryPatch{CurrentEpisode: intPtr(99)}, nil)
	require.NoError(t, err)
	assert.Equal(t, 26, updated.CurrentEpisode)
	assert.Equal(t, models.StatusCompleted, updated.Status, "reaching the total with no explicit status infers completed")
}

func TestUpdateEntryCompletedForcesCurrentToTotal(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 3,
	})

	updated, err := r.UpdateEntry(context.Background(), 5, models.EntryPatch{Status: strPtr(models.StatusCompleted)}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, 26, updated.CurrentEpisode)

	_, total, err := r.ListWatchEvents(context.Background(), 5, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, 23, total, "completing logs the remaining episodes")
}

func TestUpdateEntryExplicitStatusWins(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 2,
	})

	updated, err := r.UpdateEntry(context.Background(), 5, models.EntryPatch{
		Status:         strPtr(models.StatusOnHold),
		CurrentEpisode: intPtr(0),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnHold, updated.Status, "an explicit status must not be overridden by inference")
	assert.Equal(t, 0, updated.CurrentEpisode)
}

func TestUpdateEntryStatusInference(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 5,
	})

	updated, err := r.UpdateEntry(context.Background(), 5, models.EntryPatch{CurrentEpisode: intPtr(0)}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPlanToWatch, updated.Status)

	updated, err = r.UpdateEntry(context.Background(), 5, models.EntryPatch{CurrentEpisode: intPtr(7)}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusWatching, updated.Status)

	updated, err = r.UpdateEntry(context.Background(), 5, models.EntryPatch{CurrentEpisode: intPtr(26)}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
}

func TestUpdateEntryRefreshesKnownTotal(t *testing.T) {
	r := newTestRepo(t)
	// airing show added before the episode count was announced
	seedEntry(t, r, models.ShelfEntry{
		MalID: 21, Title: "One Piece", TotalEpisodes: 0,
		Status: models.StatusWatching, CurrentEpisode: 30,
	})

	updated, err := r.UpdateEntry(context.Background(), 21, models.EntryPatch{}, intPtr(24))
	require.NoError(t, err)
	assert.Equal(t, 24, updated.TotalEpisodes)
	assert.Equal(t, 24, updated.CurrentEpisode, "existing progress is re-clamped to the fresh total")
}

func TestUpdateEntryMissingReturnsNil(t *testing.T) {
	r := newTestRepo(t)
	updated, err := r.UpdateEntry(context.Background(), 404, models.EntryPatch{CurrentEpisode: intPtr(1)}, nil)
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestDeleteCascadesWatchEvents(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusWatching, CurrentEpisode: 0,
	})
	_, err := r.UpdateEntry(context.Background(), 5, models.EntryPatch{CurrentEpisode: intPtr(4)}, nil)
	require.NoError(t, err)

	_, total, err := r.ListWatchEvents(context.Background(), 5, 50, 0)
	require.NoError(t, err)
	require.Equal(t, 4, total)

	deleted, err := r.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, total, err = r.ListWatchEvents(context.Background(), 5, 50, 0)
	require.NoError(t, err)
	assert.Zero(t, total, "watch events must not outlive their entry")

	deleted, err = r.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestListFilters(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", Status: models.StatusCompleted,
		CurrentEpisode: 26, Genres: []string{"Action", "Sci-Fi"},
	})
	seedEntry(t, r, models.ShelfEntry{
		MalID: 21, Title: "One Piece", Status: models.StatusWatching,
		CurrentEpisode: 1071, Genres: []string{"Adventure"},
	})
	seedEntry(t, r, models.ShelfEntry{
		MalID: 30, Title: "Neon Genesis Evangelion", Status: models.StatusCompleted,
		CurrentEpisode: 26, Genres: []string{"Action", "Drama"},
	})

	byTitle, err := r.List(context.Background(), ListQuery{Q: "piece"})
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	assert.Equal(t, 21, byTitle[0].MalID)

	byStatus, err := r.List(context.Background(), ListQuery{Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	byGenre, err := r.List(context.Background(), ListQuery{Genres: []string{"Drama"}})
	require.NoError(t, err)
	require.Len(t, byGenre, 1)
	assert.Equal(t, 30, byGenre[0].MalID)

	combined, err := r.List(context.Background(), ListQuery{Status: models.StatusCompleted, Genres: []string{"Sci-Fi"}})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, 5, combined[0].MalID)
}

func TestStats(t *testing.T) {
	r := newTestRepo(t)
	seedEntry(t, r, models.ShelfEntry{
		MalID: 5, Title: "Cowboy Bebop", TotalEpisodes: 26,
		Status: models.StatusCompleted, CurrentEpisode: 26, Rating: 10,
		Genres: []string{"Action", "Sci-Fi"},
	})
	seedEntry(t, r, models.ShelfEntry{
		MalID: 21, Title: "One Piece", Status: models.StatusWatching,
		CurrentEpisode: 4, Rating: 8, Genres: []string{"Action", "Adventure"},
	})
	seedEntry(t, r, models.ShelfEntry{
		MalID: 30, Title: "Neon Genesis Evangelion", TotalEpisodes: 26,
		Status: models.StatusPlanToWatch, CurrentEpisode: 0,
	})

	// generate some recent watch events
	_, err := r.UpdateEntry(context.Background(), 21, models.EntryPatch{CurrentEpisode: intPtr(6)}, nil)
	require.NoError(t, err)

	stats, err := r.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalEntries)
	assert.Equal(t, 1, stats.ByStatus[models.StatusCompleted])
	assert.Equal(t, 1, stats.ByStatus[models.StatusWatching])
	assert.Equal(t, 1, stats.ByStatus[models.StatusPlanToWatch])
	assert.Equal(t, 2, stats.RatedEntries)
	assert.InDelta(t, 9.0, stats.MeanRating, 0.001)
	assert.Equal(t, 26+6, stats.EpisodesWatched)
	assert.Equal(t, 2, stats.EventsLast7Days)

	require.NotEmpty(t, stats.TopGenres)
	assert.Equal(t, GenreCount{Genre: "Action", Count: 2}, stats.TopGenres[0])
}
