package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"24 min per ep", 24},
		{"23 min. per ep.", 23},
		{"1 hr 55 min", 115},
		{"2 hr", 120},
		{"1 hour 30 minutes", 90},
		{"Unknown", 0},
		{"", 0},
		{"per ep", 0},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDurationMinutes(tt.raw))
		})
	}
}

func TestNormalizeAnime(t *testing.T) {
	episodes, year, score := 26, 1998, 8.75

	p := animePayload{
		MalID:    5,
		Title:    "  Cowboy Bebop ",
		Episodes: &episodes,
		Type:     "TV",
		Year:     &year,
		Season:   "Spring",
		Duration: "24 min per ep",
		Genres:   []namedRef{{Name: "Action"}, {Name: "Sci-Fi"}},
		Themes:   []namedRef{{Name: "Space"}, {Name: "Action"}}, // dup with genres
		Studios:  []namedRef{{Name: "Sunrise"}},
		Score:    &score,
	}
	p.Images.JPG.ImageURL = "https://cdn.example.com/small.jpg"
	p.Images.JPG.LargeImageURL = "https://cdn.example.com/large.jpg"
	p.Broadcast.Day = "Saturdays"

	a := normalizeAnime(p)

	assert.Equal(t, 5, a.MalID)
	assert.Equal(t, "Cowboy Bebop", a.Title)
	assert.Equal(t, "https://cdn.example.com/large.jpg", a.CoverImage)
	assert.Equal(t, 26, a.Episodes)
	assert.Equal(t, 1998, a.Year)
	assert.Equal(t, "spring", a.Season)
	assert.Equal(t, "Saturday", a.BroadcastDay)
	assert.Equal(t, 24, a.DurationMinutes)
	assert.Equal(t, []string{"Action", "Sci-Fi", "Space"}, a.Genres, "themes merge into genres without duplicates")
	assert.Equal(t, []string{"Sunrise"}, a.Studios)
	assert.InDelta(t, 8.75, a.Score, 0.001)
}

func TestNormalizeAnimeUnknownFields(t *testing.T) {
	a := normalizeAnime(animePayload{MalID: 99, Title: "Airing Show"})

	assert.Zero(t, a.Episodes, "nil episodes means still airing")
	assert.Zero(t, a.Year)
	assert.Zero(t, a.DurationMinutes)
	assert.Empty(t, a.Season)
	assert.Empty(t, a.BroadcastDay)
	assert.Empty(t, a.CoverImage)
	assert.Empty(t, a.Genres)
}
