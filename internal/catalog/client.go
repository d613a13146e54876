package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"

	"animeshelf/pkg/models"
	"animeshelf/pkg/utils"
)

// Client is a thin wrapper around the Jikan (MyAnimeList) REST API.
//
// The catalog is treated as unreliable: every method logs transport or
// decode failures and returns nil / an empty slice instead of an error,
// so callers can fall through to "defaults unavailable" behavior.
type Client struct {
	http     *resty.Client
	cache    *cache.Cache
	cacheTTL time.Duration
}

func New(cfg utils.CatalogConfig) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	httpClient.SetTimeout(cfg.Timeout)
	httpClient.SetRetryCount(2)
	httpClient.SetRetryWaitTime(time.Second)
	httpClient.SetHeader("Accept", "application/json")

	return &Client{
		http:     httpClient,
		cache:    cache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		cacheTTL: cfg.CacheTTL,
	}
}

// Search queries the catalog by title and returns up to limit matches,
// best match first. Empty slice on any failure.
func (c *Client) Search(ctx context.Context, query string, limit int) []models.CatalogAnime {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if limit <= 0 || limit > 25 {
		limit = 10
	}

	key := fmt.Sprintf("search:%d:%s", limit, strings.ToLower(query))
	if v, ok := c.cache.Get(key); ok {
		return v.([]models.CatalogAnime)
	}

	var payload listResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("q", query).
		SetQueryParam("limit", fmt.Sprintf("%d", limit)).
		SetResult(&payload).
		Get("/anime")
	if err != nil {
		log.Printf("[catalog] search %q: %v", query, err)
		return nil
	}
	if resp.IsError() {
		log.Printf("[catalog] search %q: status %d", query, resp.StatusCode())
		return nil
	}

	out := make([]models.CatalogAnime, 0, len(payload.Data))
	for _, p := range payload.Data {
		if p.MalID <= 0 {
			continue
		}
		out = append(out, normalizeAnime(p))
	}

	c.cache.Set(key, out, c.cacheTTL)
	return out
}

// GetByID fetches one anime by its catalog identifier. Nil when the id is
// unknown or the catalog is unreachable.
func (c *Client) GetByID(ctx context.Context, id int) *models.CatalogAnime {
	if id <= 0 {
		return nil
	}

	key := fmt.Sprintf("anime:%d", id)
	if v, ok := c.cache.Get(key); ok {
		return v.(*models.CatalogAnime)
	}

	var payload itemResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(fmt.Sprintf("/anime/%d/full", id))
	if err != nil {
		log.Printf("[catalog] get %d: %v", id, err)
		return nil
	}
	if resp.IsError() {
		if resp.StatusCode() != 404 {
			log.Printf("[catalog] get %d: status %d", id, resp.StatusCode())
		}
		return nil
	}
	if payload.Data.MalID <= 0 {
		return nil
	}

	a := normalizeAnime(payload.Data)

	// id lookups drive import reconciliation, so keep them longer
	c.cache.Set(key, &a, 4*c.cacheTTL)
	return &a
}

// GetSeason lists the anime that aired in a given year and season.
// Empty slice on any failure, including an unrecognized season name.
func (c *Client) GetSeason(ctx context.Context, year int, season string) []models.CatalogAnime {
	season = models.NormalizeSeason(season)
	if year <= 0 || season == "" {
		return nil
	}

	key := fmt.Sprintf("season:%d:%s", year, season)
	if v, ok := c.cache.Get(key); ok {
		return v.([]models.CatalogAnime)
	}

	var payload listResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(fmt.Sprintf("/seasons/%d/%s", year, season))
	if err != nil {
		log.Printf("[catalog] season %d/%s: %v", year, season, err)
		return nil
	}
	if resp.IsError() {
		log.Printf("[catalog] season %d/%s: status %d", year, season, resp.StatusCode())
		return nil
	}

	out := make([]models.CatalogAnime, 0, len(payload.Data))
	for _, p := range payload.Data {
		if p.MalID <= 0 {
			continue
		}
		out = append(out, normalizeAnime(p))
	}

	c.cache.Set(key, out, c.cacheTTL)
	return out
}
