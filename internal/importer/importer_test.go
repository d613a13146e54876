package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animeshelf/internal/shelf"
	"animeshelf/pkg/database"
)

func newTestImporter(t *testing.T, cat Catalog) (*Importer, *shelf.Repo) {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := shelf.NewRepo(db)
	return NewImporter(repo, cat, nil), repo
}

func TestImportCSVHappyPath(t *testing.T) {
	imp, repo := newTestImporter(t, testCatalog())

	csvDoc := "mal_id,user_status,current_episode\n5,watching,3\n"
	result, err := imp.ImportCSV(context.Background(), strings.NewReader(csvDoc))
	require.NoError(t, err)

	assert.Equal(t, 1, result.SuccessCount)
	assert.Empty(t, result.Errors)
	assert.NotEmpty(t, result.RunID)

	entry, err := repo.Get(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "Cowboy Bebop", entry.Title)
	assert.Equal(t, 3, entry.CurrentEpisode)
	assert.Equal(t, 26, entry.TotalEpisodes)
}

func TestImportCSVIsIdempotent(t *testing.T) {
	imp, repo := newTestImporter(t, testCatalog())

	csvDoc := "mal_id,user_status,current_episode,user_rating\n5,watching,3,8\n"

	for i := 0; i < 2; i++ {
		result, err := imp.ImportCSV(context.Background(), strings.NewReader(csvDoc))
		require.NoError(t, err)
		assert.Equal(t, 1, result.SuccessCount)
	}

	total, err := repo.Count(context.Background(), shelf.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total, "re-import must update, not duplicate")
}

func TestImportCSVRowErrorsDoNotAbortTheRun(t *testing.T) {
	imp, repo := newTestImporter(t, testCatalog())

	csvDoc := strings.Join([]string{
		"mal_id,title,user_status,current_episode",
		"5,,watching,3",
		",NonexistentXYZ123,watching,1",
		"bogus,Something,watching,1",
		"5,,watching", // column count mismatch
		"5,,watching,2",
	}, "\n") + "\n"

	result, err := imp.ImportCSV(context.Background(), strings.NewReader(csvDoc))
	require.NoError(t, err)

	assert.Equal(t, 2, result.SuccessCount)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, "identifier not found", result.Errors[0].Message)
	assert.Equal(t, "invalid identifier", result.Errors[1].Message)
	assert.Contains(t, result.Errors[2].Message, "columns")

	total, err := repo.Count(context.Background(), shelf.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	// the last good row won: current_episode 2
	entry, err := repo.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, entry.CurrentEpisode)
}

func TestImportCSVHeaderValidation(t *testing.T) {
	imp, _ := newTestImporter(t, testCatalog())

	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"no identifier column", "user_status,current_episode\nwatching,1\n"},
		{"no status column", "mal_id,current_episode\n5,1\n"},
		{"no episode column", "mal_id,user_status\n5,watching\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := imp.ImportCSV(context.Background(), strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestImportCSVHeaderIsCaseInsensitive(t *testing.T) {
	imp, repo := newTestImporter(t, testCatalog())

	csvDoc := "MAL_ID,User_Status,CURRENT_EPISODE\n5,Watching,1\n"
	result, err := imp.ImportCSV(context.Background(), strings.NewReader(csvDoc))
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)

	entry, err := repo.Get(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, entry)
}

func TestImportCSVSkipsBlankLines(t *testing.T) {
	imp, _ := newTestImporter(t, testCatalog())

	csvDoc := "mal_id,user_status,current_episode\n\n5,watching,1\n\n"
	result, err := imp.ImportCSV(context.Background(), strings.NewReader(csvDoc))
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Empty(t, result.Errors)
}
