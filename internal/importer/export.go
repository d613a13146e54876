package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"animeshelf/internal/shelf"
	"animeshelf/pkg/models"
)

// ExportHeader is the column order written by ExportCSV; it is the same
// set of recognized headers the importer accepts, so an exported file
// re-imports cleanly.
var ExportHeader = []string{
	colMalID, colTitle, colCoverImage, colTotalEpisodes, colUserStatus,
	colCurrentEpisode, colUserRating, colGenres, colStudios, colType,
	colYear, colSeason, colPlatforms, colBroadcastDay, colDuration,
}

// ExportCSV writes the whole shelf as CSV: one row per entry,
// multi-valued fields joined with ";", prefixed with a UTF-8 BOM so
// spreadsheet apps detect the encoding.
func ExportCSV(ctx context.Context, repo *shelf.Repo, w io.Writer) error {
	if _, err := w.Write([]byte("\ufeff")); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	entries, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := cw.Write(exportRecord(e)); err != nil {
			return fmt.Errorf("write row %d: %w", e.MalID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportRecord(e models.ShelfEntry) []string {
	return []string{
		strconv.Itoa(e.MalID),
		e.Title,
		e.CoverImage,
		zeroBlank(e.TotalEpisodes),
		e.Status,
		strconv.Itoa(e.CurrentEpisode),
		zeroBlank(e.Rating),
		strings.Join(e.Genres, ";"),
		strings.Join(e.Studios, ";"),
		e.Type,
		zeroBlank(e.Year),
		e.Season,
		strings.Join(e.StreamingPlatforms, ";"),
		e.BroadcastDay,
		zeroBlank(e.DurationMinutes),
	}
}

// zeroBlank renders 0-meaning-unknown integers as empty cells.
func zeroBlank(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
