package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"animeshelf/pkg/models"
)

// Recognized CSV headers (case-insensitive in the file).
const (
	colMalID          = "mal_id"
	colTitle          = "title"
	colCoverImage     = "cover_image"
	colTotalEpisodes  = "total_episodes"
	colUserStatus     = "user_status"
	colCurrentEpisode = "current_episode"
	colUserRating     = "user_rating"
	colGenres         = "genres"
	colStudios        = "studios"
	colType           = "type"
	colYear           = "year"
	colSeason         = "season"
	colPlatforms      = "streaming_platforms"
	colBroadcastDay   = "broadcast_day"
	colDuration       = "duration_minutes"
)

// Catalog is the slice of the catalog client the reconciler needs.
// Both methods must swallow transport errors (empty / nil results).
type Catalog interface {
	Search(ctx context.Context, query string, limit int) []models.CatalogAnime
	GetByID(ctx context.Context, id int) *models.CatalogAnime
}

// Reconciler turns one header-indexed CSV row into a canonical shelf
// entry, merging user-supplied cells with catalog defaults.
type Reconciler struct {
	Catalog Catalog
}

// ReconcileRow resolves the row's catalog identifier, validates the
// mandatory per-user fields, and fills every missing optional field from
// a catalog lookup performed lazily and at most once per row.
//
// Merge policy: a non-empty CSV cell wins when it is valid; an invalid
// cell fails the row instead of silently falling back to the catalog.
// user_status and current_episode are never defaulted from the catalog.
func (rc *Reconciler) ReconcileRow(ctx context.Context, row map[string]string, rowNum int) (*models.ShelfEntry, *models.ImportRowError) {
	rowID := strings.TrimSpace(row[colTitle])
	if rowID == "" {
		rowID = fmt.Sprintf("row %d", rowNum)
	}

	fail := func(id int, msg string) (*models.ShelfEntry, *models.ImportRowError) {
		return nil, &models.ImportRowError{Row: rowID, AnimeID: id, Message: msg}
	}

	// identifier resolution, in order: explicit mal_id, then title lookup
	var (
		id         int
		cat        *models.CatalogAnime
		catFetched bool
	)
	if raw := strings.TrimSpace(row[colMalID]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return fail(0, "invalid identifier")
		}
		id = n
	} else if title := strings.TrimSpace(row[colTitle]); title != "" {
		matches := rc.Catalog.Search(ctx, title, 1)
		if len(matches) == 0 {
			return fail(0, "identifier not found")
		}
		cat = &matches[0]
		catFetched = true
		id = cat.MalID
	} else {
		return fail(0, "missing identifier")
	}

	// defaults fetches the catalog record lazily, at most once per row
	defaults := func() *models.CatalogAnime {
		if !catFetched {
			catFetched = true
			cat = rc.Catalog.GetByID(ctx, id)
		}
		return cat
	}

	// mandatory per-user fields: never defaulted from the catalog
	rawStatus := strings.TrimSpace(row[colUserStatus])
	if rawStatus == "" {
		return fail(id, "user_status is required")
	}
	status := models.NormalizeStatus(rawStatus)
	if status == "" {
		return fail(id, "invalid user_status: "+rawStatus)
	}

	rawEpisode := strings.TrimSpace(row[colCurrentEpisode])
	if rawEpisode == "" {
		return fail(id, "current_episode is required")
	}
	currentEpisode, err := strconv.Atoi(rawEpisode)
	if err != nil || currentEpisode < 0 {
		return fail(id, "invalid current_episode: "+rawEpisode)
	}

	entry := models.ShelfEntry{
		MalID:          id,
		Status:         status,
		CurrentEpisode: currentEpisode,
	}

	// rating is per-user too, but optional; 1-10 when present
	if raw := strings.TrimSpace(row[colUserRating]); raw != "" {
		rating, err := strconv.Atoi(raw)
		if err != nil || rating < 1 || rating > 10 {
			return fail(id, "invalid user_rating: "+raw)
		}
		entry.Rating = rating
	}

	// optional fields: CSV cell if present and valid, catalog otherwise

	if title := strings.TrimSpace(row[colTitle]); title != "" {
		entry.Title = title
	} else if d := defaults(); d != nil {
		entry.Title = d.Title
	}
	if entry.Title == "" {
		return fail(id, "title unavailable")
	}

	if cover := strings.TrimSpace(row[colCoverImage]); cover != "" {
		entry.CoverImage = cover
	} else if d := defaults(); d != nil {
		entry.CoverImage = d.CoverImage
	}

	if raw := strings.TrimSpace(row[colTotalEpisodes]); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return fail(id, "invalid total_episodes: "+raw)
		}
		entry.TotalEpisodes = n
	} else if d := defaults(); d != nil {
		entry.TotalEpisodes = d.Episodes
	}

	if raw := strings.TrimSpace(row[colGenres]); raw != "" {
		entry.Genres = splitMulti(raw)
	} else if d := defaults(); d != nil {
		entry.Genres = d.Genres
	}

	if raw := strings.TrimSpace(row[colStudios]); raw != "" {
		entry.Studios = splitMulti(raw)
	} else if d := defaults(); d != nil {
		entry.Studios = d.Studios
	}

	if raw := strings.TrimSpace(row[colPlatforms]); raw != "" {
		entry.StreamingPlatforms = splitMulti(raw)
	} else if d := defaults(); d != nil {
		entry.StreamingPlatforms = d.StreamingPlatforms
	}

	if raw := strings.TrimSpace(row[colType]); raw != "" {
		entry.Type = raw
	} else if d := defaults(); d != nil {
		entry.Type = d.Type
	}

	if raw := strings.TrimSpace(row[colYear]); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year <= 0 {
			return fail(id, "invalid year: "+raw)
		}
		entry.Year = year
	} else if d := defaults(); d != nil {
		entry.Year = d.Year
	}

	if raw := strings.TrimSpace(row[colSeason]); raw != "" {
		season := models.NormalizeSeason(raw)
		if season == "" {
			return fail(id, "invalid season: "+raw)
		}
		entry.Season = season
	} else if d := defaults(); d != nil {
		entry.Season = d.Season
	}

	if raw := strings.TrimSpace(row[colBroadcastDay]); raw != "" {
		day := models.NormalizeBroadcastDay(raw)
		if day == "" {
			return fail(id, "invalid broadcast_day: "+raw)
		}
		entry.BroadcastDay = day
	} else if d := defaults(); d != nil {
		entry.BroadcastDay = d.BroadcastDay
	}

	if raw := strings.TrimSpace(row[colDuration]); raw != "" {
		mins, err := strconv.Atoi(raw)
		if err != nil || mins < 0 {
			return fail(id, "invalid duration_minutes: "+raw)
		}
		entry.DurationMinutes = mins
	} else if d := defaults(); d != nil {
		entry.DurationMinutes = d.DurationMinutes
	}

	// enforce the progress invariant against whatever total we ended with
	if entry.Status == models.StatusCompleted && entry.TotalEpisodes > 0 {
		entry.CurrentEpisode = entry.TotalEpisodes
	} else if entry.TotalEpisodes > 0 && entry.CurrentEpisode > entry.TotalEpisodes {
		entry.CurrentEpisode = entry.TotalEpisodes
	}

	return &entry, nil
}

// splitMulti splits a multi-valued cell on semicolons, trimming tokens
// and dropping empty ones. Order is preserved.
func splitMulti(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
