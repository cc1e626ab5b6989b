package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/backcheck-backend/internal/models"
	"github.com/AnshRaj112/backcheck-backend/internal/roblox"
)

const (
	BlacklistSourceStatic   = "static"
	BlacklistSourcePostgres = "postgres"
	BlacklistSourceMongo    = "mongo"
)

type Config struct {
	Environment    string   // ENV: production, development, etc.
	Port           string
	LogLevel       string
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL

	RedisURI       string // empty disables the lookup cache
	LookupCacheTTL time.Duration

	BlacklistSource string // static, postgres or mongo
	BlacklistFile   string // YAML file for the static source
	PostgresURI     string
	MongoURI        string
	MongoDatabase   string
	Divisions       []models.Division

	Upstream        roblox.Endpoints
	UpstreamTimeout time.Duration
	PageLimit       int
	MaxPages        int

	RateLimitRPS   float64
	RateLimitBurst int
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseList(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	source := strings.ToLower(strings.TrimSpace(getEnv("BLACKLIST_SOURCE", BlacklistSourceStatic)))
	switch source {
	case BlacklistSourceStatic, BlacklistSourcePostgres, BlacklistSourceMongo:
	default:
		source = BlacklistSourceStatic
	}

	return &Config{
		Environment:     env,
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		AllowedOrigins:  allowedOrigins,
		RedisURI:        getEnv("REDIS_URI", ""),
		LookupCacheTTL:  getEnvDuration("LOOKUP_CACHE_TTL", 10*time.Minute),
		BlacklistSource: source,
		BlacklistFile:   getEnv("BLACKLIST_FILE", ""),
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		MongoURI:        getEnv("MONGODB_URI", getEnv("MONGO_URI", "")),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "backcheck"),
		Divisions:       parseDivisions(getEnv("DIVISIONS", "")),
		Upstream: roblox.Endpoints{
			Users:      getEnv("USERS_API_URL", roblox.DefaultUsersURL),
			Friends:    getEnv("FRIENDS_API_URL", roblox.DefaultFriendsURL),
			Groups:     getEnv("GROUPS_API_URL", roblox.DefaultGroupsURL),
			Badges:     getEnv("BADGES_API_URL", roblox.DefaultBadgesURL),
			Thumbnails: getEnv("THUMBNAILS_API_URL", roblox.DefaultThumbnailsURL),
		},
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 8*time.Second),
		PageLimit:       getEnvInt("PAGE_LIMIT", roblox.DefaultPageLimit),
		MaxPages:        getEnvInt("MAX_PAGES", 0),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10),
	}
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func parseList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseDivisions reads "tag:Label,tag2:Label 2". A missing label reuses the tag.
func parseDivisions(s string) []models.Division {
	var out []models.Division
	seen := make(map[string]bool)
	for _, part := range parseList(s) {
		tag, label, _ := strings.Cut(part, ":")
		tag = strings.ToLower(strings.TrimSpace(tag))
		label = strings.TrimSpace(label)
		if tag == "" || seen[tag] {
			continue
		}
		if label == "" {
			label = tag
		}
		seen[tag] = true
		out = append(out, models.Division{Tag: tag, Label: label})
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return n
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return f
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil {
		return d
	}
	return defaultValue
}
