package utils

import (
	"os"
	"strconv"
	"time"
)

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTDuration time.Duration
}

func LoadAuthConfig() AuthConfig {
	secret := os.Getenv("ANIMESHELF_JWT_SECRET")
	if secret == "" {
		// dev default (change for production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("ANIMESHELF_JWT_ISSUER")
	if issuer == "" {
		issuer = "animeshelf"
	}

	ttl := 24 * time.Hour
	if raw := os.Getenv("ANIMESHELF_JWT_TTL_HOURS"); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
			ttl = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: ttl,
	}
}

type CatalogConfig struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

func LoadCatalogConfig() CatalogConfig {
	base := os.Getenv("ANIMESHELF_CATALOG_URL")
	if base == "" {
		base = "https://api.jikan.moe/v4"
	}

	timeout := 12 * time.Second
	if raw := os.Getenv("ANIMESHELF_CATALOG_TIMEOUT_SECONDS"); raw != "" {
		if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	cacheTTL := 15 * time.Minute
	if raw := os.Getenv("ANIMESHELF_CATALOG_CACHE_MINUTES"); raw != "" {
		if mins, err := strconv.Atoi(raw); err == nil && mins > 0 {
			cacheTTL = time.Duration(mins) * time.Minute
		}
	}

	return CatalogConfig{
		BaseURL:  base,
		Timeout:  timeout,
		CacheTTL: cacheTTL,
	}
}
