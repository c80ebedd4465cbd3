// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string
	PostgresURL    string // empty selects the in-memory store
	JWTKey         string
	AllowedOrigins []string
	LogLevel       string
	ICEServers     []string
	PublicBaseURL  string
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}

	jwtKey, exists := os.LookupEnv("JWT_KEY")
	if !exists {
		return Config{}, fmt.Errorf("missing JWT_KEY")
	}
	origins, exists := os.LookupEnv("ALLOWED_ORIGINS")
	if !exists {
		return Config{}, fmt.Errorf("missing ALLOWED_ORIGINS")
	}

	cfg := Config{
		Port:           envOr("PORT", "5000"),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		JWTKey:         jwtKey,
		AllowedOrigins: splitList(origins),
		LogLevel:       envOr("LOG_LEVEL", "info"),
		ICEServers:     splitList(envOr("ICE_SERVERS", "stun:stun.l.google.com:19302")),
		PublicBaseURL:  envOr("PUBLIC_BASE_URL", "http://localhost:5000"),
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
