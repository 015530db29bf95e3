// Package config exposes the storefront client's settings as accessor
// functions with sane defaults. Values come from the process environment,
// optionally seeded from a .env file in the working directory.
package config

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

const (
	defaultFeedBaseURL = "https://kankarej-spices-default-rtdb.asia-southeast1.firebasedatabase.app"
	defaultFeedTimeout = 10 // seconds
	defaultScoreDBPath = "kankarej_scores.db"
	defaultAppEnv      = "local"

	defaultGamePairs       = 6
	defaultPreloadWorkers  = 4
	defaultPreloadTimeout  = 15 // seconds
	defaultImageProxyWidth = 600
)

var loadOnce sync.Once

// Load reads the .env file once. A missing file is not an error; the
// process environment always wins over file values.
func Load() {
	loadOnce.Do(func() {
		_ = godotenv.Load()
	})
}

func get(key, fallback string) string {
	Load()
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// AppEnv returns the runtime environment ("local", "production", ...).
func AppEnv() string {
	return get("APP_ENV", defaultAppEnv)
}

// FeedBaseURL is the root URL of the realtime product database.
func FeedBaseURL() string {
	return strings.TrimRight(get("FEED_BASE_URL", defaultFeedBaseURL), "/")
}

// FeedTimeout bounds every one-shot feed fetch.
func FeedTimeout() time.Duration {
	secs := cast.ToInt(get("FEED_TIMEOUT_SECONDS", ""))
	if secs <= 0 {
		secs = defaultFeedTimeout
	}
	return time.Duration(secs) * time.Second
}

// ScoreDBPath is the sqlite file holding persisted game scores.
func ScoreDBPath() string {
	return get("SCORE_DB_PATH", defaultScoreDBPath)
}

// GamePairs is the number of product pairs dealt per round.
func GamePairs() int {
	pairs := cast.ToInt(get("GAME_PAIRS", ""))
	if pairs <= 0 {
		pairs = defaultGamePairs
	}
	return pairs
}

// PreloadWorkers caps concurrent image prefetches before a round starts.
func PreloadWorkers() int {
	n := cast.ToInt(get("PRELOAD_WORKERS", ""))
	if n <= 0 {
		n = defaultPreloadWorkers
	}
	return n
}

// PreloadTimeout bounds the whole image-prefetch phase.
func PreloadTimeout() time.Duration {
	secs := cast.ToInt(get("PRELOAD_TIMEOUT_SECONDS", ""))
	if secs <= 0 {
		secs = defaultPreloadTimeout
	}
	return time.Duration(secs) * time.Second
}

// ImageProxyWidth is the default width requested from the image proxy.
func ImageProxyWidth() int {
	w := cast.ToInt(get("IMAGE_PROXY_WIDTH", ""))
	if w <= 0 {
		w = defaultImageProxyWidth
	}
	return w
}
