// Package logger provides the structured, levelled logger used across the
// storefront client, built on log/slog.
//
// Components grab a pre-tagged logger once at construction time:
//
//	log := logger.For("catalog")
//	log.Info("snapshot filled", "products", n)
//	// → time=... level=INFO msg="snapshot filled" component=catalog products=120
package logger

import (
	"log/slog"
	"os"

	"github.com/shashiranjanraj/kankarej/config"
)

var L *slog.Logger

func init() {
	var handler slog.Handler

	switch config.AppEnv() {
	case "production", "prod":
		opts := &slog.HandlerOptions{Level: slog.LevelInfo}
		handler = slog.NewJSONHandler(os.Stdout, opts) // structured JSON for log aggregators
	default:
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		handler = slog.NewTextHandler(os.Stdout, opts) // human-readable for dev
	}

	L = slog.New(handler)
	slog.SetDefault(L)
}

// For returns the base logger tagged with a component name.
func For(component string) *slog.Logger {
	return L.With("component", component)
}
