package catalog

// Raw Jikan v4 payloads. Only the fields we map into models.CatalogAnime
// are declared; everything else in the upstream response is ignored.

type namedRef struct {
	Name string `json:"name"`
}

type animePayload struct {
	MalID  int    `json:"mal_id"`
	Title  string `json:"title"`
	Images struct {
		JPG struct {
			ImageURL      string `json:"image_url"`
			LargeImageURL string `json:"large_image_url"`
		} `json:"jpg"`
	} `json:"images"`
	Episodes  *int   `json:"episodes"`
	Type      string `json:"type"`
	Year      *int   `json:"year"`
	Season    string `json:"season"`
	Broadcast struct {
		Day string `json:"day"`
	} `json:"broadcast"`
	Duration  string     `json:"duration"`
	Genres    []namedRef `json:"genres"`
	Themes    []namedRef `json:"themes"`
	Studios   []namedRef `json:"studios"`
	Streaming []namedRef `json:"streaming"`
	Score     *float64   `json:"score"`
	Synopsis  string     `json:"synopsis"`
}

type listResponse struct {
	Data []animePayload `json:"data"`
}

type itemResponse struct {
	Data animePayload `json:"data"`
}
