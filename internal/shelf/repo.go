package shelf

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"animeshelf/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type ListQuery struct {
	Q      string   // keyword search in title
	Status string   // exact status filter
	Genres []string // any-match
	Limit  int
	Offset int
}

const entryColumns = `mal_id, title, cover_image, total_episodes, status, current_episode,
	rating, genres, studios, streaming_platforms, type, year, season,
	broadcast_day, duration_minutes, added_at, updated_at`

// Upsert inserts a shelf entry or replaces the fields of an existing one
// with the same catalog id. added_at survives replacement.
func (r *Repo) Upsert(ctx context.Context, e models.ShelfEntry) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO shelf_entries (
			mal_id, title, cover_image, total_episodes, status, current_episode,
			rating, genres, studios, streaming_platforms, type, year, season,
			broadcast_day, duration_minutes, added_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(mal_id) DO UPDATE SET
			title = excluded.title,
			cover_image = excluded.cover_image,
			total_episodes = excluded.total_episodes,
			status = excluded.status,
			current_episode = excluded.current_episode,
			rating = excluded.rating,
			genres = excluded.genres,
			studios = excluded.studios,
			streaming_platforms = excluded.streaming_platforms,
			type = excluded.type,
			year = excluded.year,
			season = excluded.season,
			broadcast_day = excluded.broadcast_day,
			duration_minutes = excluded.duration_minutes,
			updated_at = CURRENT_TIMESTAMP
	`,
		e.MalID, e.Title, nullString(e.CoverImage), nullInt(e.TotalEpisodes),
		e.Status, e.CurrentEpisode, nullInt(e.Rating),
		marshalSet(e.Genres), marshalSet(e.Studios), marshalSet(e.StreamingPlatforms),
		nullString(e.Type), nullInt(e.Year), nullString(e.Season),
		nullString(e.BroadcastDay), nullInt(e.DurationMinutes),
	)
	if err != nil {
		return fmt.Errorf("upsert shelf entry: %w", err)
	}
	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (*models.ShelfEntry, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM shelf_entries
		WHERE mal_id = ?
	`, id)

	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get shelf entry: %w", err)
	}
	return e, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count shelf: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.ShelfEntry, error) {
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list shelf: %w", err)
	}
	defer rows.Close()

	out := make([]models.ShelfEntry, 0, q.Limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shelf row: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// ListAll returns every entry ordered by title, for exports.
func (r *Repo) ListAll(ctx context.Context) ([]models.ShelfEntry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM shelf_entries
		ORDER BY title ASC, mal_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list all shelf: %w", err)
	}
	defer rows.Close()

	var out []models.ShelfEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan shelf row: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Delete removes an entry. Watch events for the entry go with it via the
// foreign key cascade.
func (r *Repo) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		DELETE FROM shelf_entries
		WHERE mal_id = ?
	`, id)
	if err != nil {
		return false, fmt.Errorf("delete shelf entry: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpdateEntry applies a partial update to an entry's user-mutable fields.
//
// Order of operations:
//  1. refresh the stored total when knownTotal is supplied and differs
//  2. status=completed with a positive total forces current to the total
//  3. otherwise an explicit current_episode is clamped to [0, total]
//  4. otherwise the existing current_episode is re-clamped
//
// When current_episode ends up above its prior value, one WatchEvent per
// newly crossed episode is written in the same transaction. An explicit
// status always wins; episode-driven status inference only runs when the
// patch carries no status of its own.
//
// Returns nil when no entry with the given id exists.
func (r *Repo) UpdateEntry(ctx context.Context, id int, patch models.EntryPatch, knownTotal *int) (*models.ShelfEntry, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update entry: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT `+entryColumns+`
		FROM shelf_entries
		WHERE mal_id = ?
	`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("load entry for update: %w", err)
	}

	if knownTotal != nil && *knownTotal >= 0 && *knownTotal != entry.TotalEpisodes {
		entry.TotalEpisodes = *knownTotal
	}

	prior := entry.CurrentEpisode

	if patch.Status != nil {
		entry.Status = *patch.Status
	}
	if patch.Rating != nil {
		entry.Rating = *patch.Rating
	}
	if patch.StreamingPlatforms != nil {
		entry.StreamingPlatforms = *patch.StreamingPlatforms
	}

	switch {
	case patch.Status != nil && *patch.Status == models.StatusCompleted && entry.TotalEpisodes > 0:
		entry.CurrentEpisode = entry.TotalEpisodes
	case patch.CurrentEpisode != nil:
		entry.CurrentEpisode = clampEpisode(*patch.CurrentEpisode, entry.TotalEpisodes)
	default:
		entry.CurrentEpisode = clampEpisode(entry.CurrentEpisode, entry.TotalEpisodes)
	}

	if patch.Status == nil && patch.CurrentEpisode != nil {
		entry.Status = inferStatus(entry.CurrentEpisode, entry.TotalEpisodes)
	}

	now := time.Now().UTC()

	if entry.CurrentEpisode > prior {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO watch_events (anime_id, episode, watched_at)
			VALUES (?, ?, ?)
		`)
		if err != nil {
			return nil, fmt.Errorf("prepare watch event: %w", err)
		}
		for ep := prior + 1; ep <= entry.CurrentEpisode; ep++ {
			if _, err := stmt.ExecContext(ctx, id, ep, now); err != nil {
				_ = stmt.Close()
				return nil, fmt.Errorf("insert watch event %d: %w", ep, err)
			}
		}
		_ = stmt.Close()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE shelf_entries
		SET total_episodes = ?, status = ?, current_episode = ?, rating = ?,
			streaming_platforms = ?, updated_at = ?
		WHERE mal_id = ?
	`, nullInt(entry.TotalEpisodes), entry.Status, entry.CurrentEpisode,
		nullInt(entry.Rating), marshalSet(entry.StreamingPlatforms), now, id,
	); err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update entry: %w", err)
	}

	entry.UpdatedAt = now
	return entry, nil
}

// ListWatchEvents returns the watch history for one entry, newest first.
func (r *Repo) ListWatchEvents(ctx context.Context, animeID, limit, offset int) ([]models.WatchEvent, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM watch_events
		WHERE anime_id = ?
	`, animeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count watch events: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, anime_id, episode, watched_at
		FROM watch_events
		WHERE anime_id = ?
		ORDER BY watched_at DESC, episode DESC
		LIMIT ? OFFSET ?
	`, animeID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list watch events: %w", err)
	}
	defer rows.Close()

	out := make([]models.WatchEvent, 0, limit)
	for rows.Next() {
		var ev models.WatchEvent
		if err := rows.Scan(&ev.ID, &ev.AnimeID, &ev.Episode, &ev.WatchedAt); err != nil {
			return nil, 0, fmt.Errorf("scan watch event: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows watch events: %w", err)
	}

	return out, total, nil
}

func clampEpisode(v, total int) int {
	if v < 0 {
		return 0
	}
	if total > 0 && v > total {
		return total
	}
	return v
}

// inferStatus derives a status from pure episode progress: untouched
// entries go back to the plan, finished runs complete, everything in
// between is being watched.
func inferStatus(current, total int) string {
	switch {
	case current == 0:
		return models.StatusPlanToWatch
	case total > 0 && current == total:
		return models.StatusCompleted
	default:
		return models.StatusWatching
	}
}

// buildListSQL builds either COUNT(*) or the SELECT list.
// genres filter is "any-match" via LIKE against the stored JSON text.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + entryColumns + ` FROM shelf_entries`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM shelf_entries`
	}

	var where []string
	var args []any

	if strings.TrimSpace(q.Q) != "" {
		where = append(where, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(q.Q))+"%")
	}

	if strings.TrimSpace(q.Status) != "" {
		where = append(where, "status = ?")
		args = append(args, strings.TrimSpace(q.Status))
	}

	if len(q.Genres) > 0 {
		var genreOr []string
		for _, g := range q.Genres {
			g = strings.TrimSpace(g)
			if g == "" {
				continue
			}
			genreOr = append(genreOr, "LOWER(genres) LIKE ?")
			args = append(args, `%`+strings.ToLower(g)+`%`)
		}
		if len(genreOr) > 0 {
			where = append(where, "("+strings.Join(genreOr, " OR ")+")")
		}
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		sqlStr += " ORDER BY updated_at DESC, title ASC"
		sqlStr += " LIMIT ? OFFSET ?"
		limit := q.Limit
		if limit <= 0 || limit > 500 {
			limit = 50
		}
		offset := q.Offset
		if offset < 0 {
			offset = 0
		}
		args = append(args, limit, offset)
	}

	return sqlStr, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.ShelfEntry, error) {
	var (
		e             models.ShelfEntry
		cover         sql.NullString
		totalEpisodes sql.NullInt64
		rating        sql.NullInt64
		genres        string
		studios       string
		platforms     string
		animeType     sql.NullString
		year          sql.NullInt64
		season        sql.NullString
		broadcastDay  sql.NullString
		duration      sql.NullInt64
	)

	if err := row.Scan(
		&e.MalID, &e.Title, &cover, &totalEpisodes, &e.Status, &e.CurrentEpisode,
		&rating, &genres, &studios, &platforms, &animeType, &year, &season,
		&broadcastDay, &duration, &e.AddedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.CoverImage = cover.String
	if totalEpisodes.Valid {
		e.TotalEpisodes = int(totalEpisodes.Int64)
	}
	if rating.Valid {
		e.Rating = int(rating.Int64)
	}
	e.Type = animeType.String
	if year.Valid {
		e.Year = int(year.Int64)
	}
	e.Season = season.String
	e.BroadcastDay = broadcastDay.String
	if duration.Valid {
		e.DurationMinutes = int(duration.Int64)
	}

	_ = json.Unmarshal([]byte(genres), &e.Genres)
	_ = json.Unmarshal([]byte(studios), &e.Studios)
	_ = json.Unmarshal([]byte(platforms), &e.StreamingPlatforms)

	return &e, nil
}

func marshalSet(vals []string) string {
	if len(vals) == 0 {
		return "[]"
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}
