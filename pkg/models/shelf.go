package models

import (
	"strings"
	"time"
)

// Watch statuses a shelf entry can be in. Transitions are unconstrained;
// the store only derives current_episode when moving to StatusCompleted.
const (
	StatusWatching    = "watching"
	StatusCompleted   = "completed"
	StatusOnHold      = "on_hold"
	StatusDropped     = "dropped"
	StatusPlanToWatch = "plan_to_watch"
)

// ShelfEntry is the canonical persisted unit: one tracked anime on the
// user's shelf. Catalog metadata is denormalized onto the entry so the
// shelf stays usable when the catalog is unreachable.
//
// TotalEpisodes and DurationMinutes use 0 for "unknown"; Rating uses 0
// for "unrated" (valid ratings are 1-10).
type ShelfEntry struct {
	MalID              int       `json:"mal_id"`
	Title              string    `json:"title"`
	CoverImage         string    `json:"cover_image,omitempty"`
	TotalEpisodes      int       `json:"total_episodes"`
	Status             string    `json:"status"`
	CurrentEpisode     int       `json:"current_episode"`
	Rating             int       `json:"rating,omitempty"`
	Genres             []string  `json:"genres"`
	Studios            []string  `json:"studios,omitempty"`
	StreamingPlatforms []string  `json:"streaming_platforms,omitempty"`
	Type               string    `json:"type,omitempty"`
	Year               int       `json:"year,omitempty"`
	Season             string    `json:"season,omitempty"`
	BroadcastDay       string    `json:"broadcast_day,omitempty"`
	DurationMinutes    int       `json:"duration_minutes,omitempty"`
	AddedAt            time.Time `json:"added_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// EntryPatch is a typed partial update for a shelf entry. Nil fields are
// left untouched. Only the user-mutable field groups are present here;
// catalog metadata is refreshed through upserts, not patches.
type EntryPatch struct {
	Status             *string   `json:"status,omitempty"`
	CurrentEpisode     *int      `json:"current_episode,omitempty"`
	Rating             *int      `json:"rating,omitempty"`
	StreamingPlatforms *[]string `json:"streaming_platforms,omitempty"`
}

// NormalizeStatus maps user input to one of the five canonical statuses.
// Returns "" for anything unrecognized.
func NormalizeStatus(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "watching":
		return StatusWatching
	case "completed":
		return StatusCompleted
	case "on_hold", "on hold", "onhold", "paused":
		return StatusOnHold
	case "dropped":
		return StatusDropped
	case "plan_to_watch", "plan to watch", "planned", "ptw":
		return StatusPlanToWatch
	default:
		return ""
	}
}

// NormalizeBroadcastDay maps user input to a weekday name or "Other".
// Returns "" for anything unrecognized (empty input stays empty).
func NormalizeBroadcastDay(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "mondays":
		return "Monday"
	case "tuesday", "tuesdays":
		return "Tuesday"
	case "wednesday", "wednesdays":
		return "Wednesday"
	case "thursday", "thursdays":
		return "Thursday"
	case "friday", "fridays":
		return "Friday"
	case "saturday", "saturdays":
		return "Saturday"
	case "sunday", "sundays":
		return "Sunday"
	case "other", "unknown":
		return "Other"
	default:
		return ""
	}
}

// NormalizeSeason maps user input to one of the four broadcast seasons.
// Returns "" for anything unrecognized.
func NormalizeSeason(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "winter":
		return "winter"
	case "spring":
		return "spring"
	case "summer":
		return "summer"
	case "fall", "autumn":
		return "fall"
	default:
		return ""
	}
}
