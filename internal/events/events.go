package events

import "time"

// ShelfEvent announces a change to one shelf entry.
// Type is "shelf.update" or "shelf.delete".
type ShelfEvent struct {
	Type           string    `json:"type"`
	AnimeID        int       `json:"anime_id"`
	Title          string    `json:"title,omitempty"`
	CurrentEpisode int       `json:"current_episode,omitempty"`
	Status         string    `json:"status,omitempty"`
	At             time.Time `json:"at"`
}

// ImportEvent announces the end of an import run.
type ImportEvent struct {
	Type     string    `json:"type"` // "import.finished"
	RunID    string    `json:"run_id"`
	Imported int       `json:"imported"`
	Failed   int       `json:"failed"`
	At       time.Time `json:"at"`
}
