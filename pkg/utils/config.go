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
	secret := os.Getenv("CINEHUB_JWT_SECRET")
	if secret == "" {
		// dev default (change for demo / production)
		secret = "dev-secret-change-me"
	}

	issuer := os.Getenv("CINEHUB_JWT_ISSUER")
	if issuer == "" {
		issuer = "cinehub"
	}

	duration := 24 * time.Hour
	if ttl := os.Getenv("CINEHUB_JWT_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			duration = time.Duration(hours) * time.Hour
		}
	}

	return AuthConfig{
		JWTSecret:   secret,
		JWTIssuer:   issuer,
		JWTDuration: duration,
	}
}

type OMDbConfig struct {
	APIKey  string
	BaseURL string
}

func LoadOMDbConfig() OMDbConfig {
	base := os.Getenv("OMDB_BASE_URL")
	if base == "" {
		base = "https://www.omdbapi.com"
	}

	return OMDbConfig{
		APIKey:  os.Getenv("OMDB_API_KEY"),
		BaseURL: base,
	}
}
