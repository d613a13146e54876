package models

// ImportRowError describes why a single CSV row was rejected during an
// import run. Row is the title when one was supplied, otherwise the
// 1-based row number. Ephemeral: surfaced to the caller, never persisted.
type ImportRowError struct {
	Row     string `json:"row"`
	AnimeID int    `json:"anime_id,omitempty"`
	Message string `json:"message"`
}
