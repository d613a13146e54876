package shelf

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
)

// ShelfStats is the aggregate view shown on the dashboard.
type ShelfStats struct {
	TotalEntries    int            `json:"total_entries"`
	ByStatus        map[string]int `json:"by_status"`
	RatedEntries    int            `json:"rated_entries"`
	MeanRating      float64        `json:"mean_rating"`
	EpisodesWatched int            `json:"episodes_watched"`
	TopGenres       []GenreCount   `json:"top_genres"`
	EventsLast7Days int            `json:"events_last_7_days"`
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

// Stats computes shelf-wide aggregates in a handful of queries. Genre
// counts are tallied in Go since genres live in JSON text columns.
func (r *Repo) Stats(ctx context.Context) (*ShelfStats, error) {
	stats := &ShelfStats{
		ByStatus: make(map[string]int),
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM shelf_entries
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("stats by status: %w", err)
	}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		stats.ByStatus[status] = count
		stats.TotalEntries += count
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows status counts: %w", err)
	}

	var meanRating sql.NullFloat64
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(rating), AVG(rating)
		FROM shelf_entries
		WHERE rating IS NOT NULL
	`).Scan(&stats.RatedEntries, &meanRating); err != nil {
		return nil, fmt.Errorf("stats ratings: %w", err)
	}
	if meanRating.Valid {
		stats.MeanRating = meanRating.Float64
	}

	var episodes sql.NullInt64
	if err := r.DB.QueryRowContext(ctx, `
		SELECT SUM(current_episode)
		FROM shelf_entries
	`).Scan(&episodes); err != nil {
		return nil, fmt.Errorf("stats episodes: %w", err)
	}
	if episodes.Valid {
		stats.EpisodesWatched = int(episodes.Int64)
	}

	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM watch_events
		WHERE watched_at >= DATETIME('now', '-7 days')
	`).Scan(&stats.EventsLast7Days); err != nil {
		return nil, fmt.Errorf("stats recent events: %w", err)
	}

	genreRows, err := r.DB.QueryContext(ctx, `
		SELECT genres FROM shelf_entries
	`)
	if err != nil {
		return nil, fmt.Errorf("stats genres: %w", err)
	}
	defer genreRows.Close()

	counts := make(map[string]int)
	for genreRows.Next() {
		var raw string
		if err := genreRows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan genres: %w", err)
		}
		var genres []string
		_ = json.Unmarshal([]byte(raw), &genres)
		for _, g := range genres {
			counts[g]++
		}
	}
	if err := genreRows.Err(); err != nil {
		return nil, fmt.Errorf("rows genres: %w", err)
	}

	stats.TopGenres = make([]GenreCount, 0, len(counts))
	for g, n := range counts {
		stats.TopGenres = append(stats.TopGenres, GenreCount{Genre: g, Count: n})
	}
	sort.Slice(stats.TopGenres, func(i, j int) bool {
		if stats.TopGenres[i].Count != stats.TopGenres[j].Count {
			return stats.TopGenres[i].Count > stats.TopGenres[j].Count
		}
		return stats.TopGenres[i].Genre < stats.TopGenres[j].Genre
	})
	if len(stats.TopGenres) > 10 {
		stats.TopGenres = stats.TopGenres[:10]
	}

	return stats, nil
}
