package env

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreSqlite   = "sqlite"

	CacheRedis  = "redis"
	CacheMemory = "memory"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	SpotifyClientId     string
	SpotifyClientSecret string
	SpotifyMarket       string

	YoutubeApiKey        string
	LastFmApiKey         string
	MusicBrainzUserAgent string

	GenerativeApiKey string
	GenerativeApiUrl string
	GenerativeModel  string

	ViberateBaseUrl string

	StoreDriver   string
	MongoUrl      string
	MongoDatabase string
	DatabaseUrl   string

	CacheDriver string
	RedisUrl    string

	StatsdAddr     string
	TracingEnabled bool

	SimilarMaxDepth int
	HttpTimeout     time.Duration
}

// Load reads a .env file when there is one, then the process environment, and validates the result
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	config := &Config{
		Port:                 getOrDefault("PORT", "8080"),
		AllowedOrigins:       splitList(getOrDefault("ALLOWED_ORIGINS", "http://localhost:3000")),
		LogLevel:             os.Getenv("LOG_LEVEL"),
		SpotifyClientId:      os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret:  os.Getenv("SPOTIFY_CLIENT_SECRET"),
		SpotifyMarket:        getOrDefault("SPOTIFY_MARKET", "US"),
		YoutubeApiKey:        os.Getenv("YOUTUBE_API_KEY"),
		LastFmApiKey:         os.Getenv("LASTFM_API_KEY"),
		MusicBrainzUserAgent: getOrDefault("MUSICBRAINZ_USER_AGENT", "ArtistAnalytics/1.0 (admin@artist-analytics.local)"),
		GenerativeApiKey:     os.Getenv("GENERATIVE_API_KEY"),
		GenerativeApiUrl:     getOrDefault("GENERATIVE_API_URL", "https://api.openai.com/v1/chat/completions"),
		GenerativeModel:      getOrDefault("GENERATIVE_MODEL", "gpt-4o-mini"),
		ViberateBaseUrl:      getOrDefault("VIBERATE_BASE_URL", "https://www.viberate.com"),
		StoreDriver:          getOrDefault("STORE_DRIVER", StoreMongo),
		MongoUrl:             os.Getenv("MONGO_URL"),
		MongoDatabase:        getOrDefault("MONGO_DATABASE", "artist_analytics"),
		DatabaseUrl:          os.Getenv("DATABASE_URL"),
		CacheDriver:          getOrDefault("CACHE_DRIVER", CacheMemory),
		RedisUrl:             os.Getenv("REDIS_URL"),
		StatsdAddr:           os.Getenv("STATSD_ADDR"),
		TracingEnabled:       os.Getenv("DD_TRACE_ENABLED") == "true",
		SimilarMaxDepth:      getIntOrDefault("SIMILAR_MAX_DEPTH", 0),
		HttpTimeout:          time.Duration(getIntOrDefault("HTTP_TIMEOUT_SECONDS", 10)) * time.Second,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate reports every missing key at once so a misconfigured deploy fails on the first boot
func (c *Config) Validate() error {
	var missing []string

	required := map[string]string{
		"SPOTIFY_CLIENT_ID":     c.SpotifyClientId,
		"SPOTIFY_CLIENT_SECRET": c.SpotifyClientSecret,
		"YOUTUBE_API_KEY":       c.YoutubeApiKey,
		"LASTFM_API_KEY":        c.LastFmApiKey,
		"GENERATIVE_API_KEY":    c.GenerativeApiKey,
	}

	for _, key := range sortedKeys(required) {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}

	switch c.StoreDriver {
	case StoreMongo:
		if c.MongoUrl == "" {
			missing = append(missing, "MONGO_URL")
		}
	case StorePostgres, StoreSqlite:
		if c.DatabaseUrl == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q, expected one of mongo, postgres, sqlite", c.StoreDriver)
	}

	switch c.CacheDriver {
	case CacheRedis:
		if c.RedisUrl == "" {
			missing = append(missing, "REDIS_URL")
		}
	case CacheMemory:
	default:
		return fmt.Errorf("unknown CACHE_DRIVER %q, expected one of redis, memory", c.CacheDriver)
	}

	if c.SimilarMaxDepth < 0 {
		return fmt.Errorf("SIMILAR_MAX_DEPTH must be >= 0, found %d", c.SimilarMaxDepth)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}

	return nil
}

func getOrDefault(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getIntOrDefault(key string, fallback int) int {
	value := os.Getenv(key)

	if value == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(value)

	if err != nil {
		return fallback
	}

	return parsed
}

func splitList(value string) []string {
	items := make([]string, 0)

	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))

	for key := range values {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
