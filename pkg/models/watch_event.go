package models

import "time"

// WatchEvent is one append-only log row recording that an episode was
// watched. Events are only ever created when current_episode advances and
// only ever deleted by the cascade when the parent entry is removed.
type WatchEvent struct {
	ID        int64     `json:"id"`
	AnimeID   int       `json:"anime_id"`
	Episode   int       `json:"episode"`
	WatchedAt time.Time `json:"watched_at"`
}
