package catalog

import (
	"strconv"
	"strings"

	"animeshelf/pkg/models"
)

// normalizeAnime maps a raw Jikan payload into the internal DTO.
func normalizeAnime(p animePayload) models.CatalogAnime {
	cover := p.Images.JPG.LargeImageURL
	if cover == "" {
		cover = p.Images.JPG.ImageURL
	}

	genres := refNames(p.Genres)
	for _, t := range refNames(p.Themes) {
		genres = appendIfMissing(genres, t)
	}

	a := models.CatalogAnime{
		MalID:              p.MalID,
		Title:              strings.TrimSpace(p.Title),
		CoverImage:         cover,
		Type:               strings.TrimSpace(p.Type),
		Season:             models.NormalizeSeason(p.Season),
		BroadcastDay:       models.NormalizeBroadcastDay(p.Broadcast.Day),
		DurationMinutes:    ParseDurationMinutes(p.Duration),
		Genres:             genres,
		Studios:            refNames(p.Studios),
		StreamingPlatforms: refNames(p.Streaming),
		Synopsis:           strings.TrimSpace(p.Synopsis),
	}
	if p.Episodes != nil && *p.Episodes > 0 {
		a.Episodes = *p.Episodes
	}
	if p.Year != nil && *p.Year > 0 {
		a.Year = *p.Year
	}
	if p.Score != nil {
		a.Score = *p.Score
	}
	return a
}

func refNames(refs []namedRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		name := strings.TrimSpace(r.Name)
		if name != "" {
			out = appendIfMissing(out, name)
		}
	}
	return out
}

func appendIfMissing(slice []string, v string) []string {
	for _, x := range slice {
		if x == v {
			return slice
		}
	}
	return append(slice, v)
}

// ParseDurationMinutes derives minutes from the catalog's free-text
// duration, e.g. "24 min per ep" -> 24 or "1 hr 55 min" -> 115.
// Anything it cannot read yields 0 (unknown).
func ParseDurationMinutes(raw string) int {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0
	}

	fields := strings.Fields(s)
	hours, mins := 0, 0
	seen := false

	for i := 0; i+1 < len(fields); i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil || n < 0 {
			continue
		}
		unit := fields[i+1]
		switch {
		case strings.HasPrefix(unit, "hr"), strings.HasPrefix(unit, "hour"):
			hours = n
			seen = true
		case strings.HasPrefix(unit, "min"):
			mins = n
			seen = true
		}
	}

	if !seen {
		return 0
	}
	return hours*60 + mins
}
