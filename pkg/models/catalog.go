package models

// CatalogAnime is the normalized, internal form of a catalog record.
//
// The raw catalog API response is mapped into this structure at the
// client boundary, so the rest of the codebase never depends on the
// upstream JSON shape.
type CatalogAnime struct {
	MalID              int      `json:"mal_id"`
	Title              string   `json:"title"`
	CoverImage         string   `json:"cover_image,omitempty"`
	Episodes           int      `json:"episodes"` // 0 = unknown
	Type               string   `json:"type,omitempty"`
	Year               int      `json:"year,omitempty"`
	Season             string   `json:"season,omitempty"`
	BroadcastDay       string   `json:"broadcast_day,omitempty"`
	DurationMinutes    int      `json:"duration_minutes,omitempty"`
	Genres             []string `json:"genres"`
	Studios            []string `json:"studios,omitempty"`
	StreamingPlatforms []string `json:"streaming_platforms,omitempty"`
	Score              float64  `json:"score,omitempty"`
	Synopsis           string   `json:"synopsis,omitempty"`
}
