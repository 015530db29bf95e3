// Package presence writes fire-and-forget session telemetry: a live
// entry under active_sessions removed on teardown, and a permanent
// session_history record. Nothing here carries logic the storefront
// depends on — failures are logged and forgotten.
package presence

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/shashiranjanraj/kankarej/pkg/feed"
	"github.com/shashiranjanraj/kankarej/pkg/logger"
)

// serverTimestamp is the store's write-time timestamp sentinel.
var serverTimestamp = map[string]string{".sv": "timestamp"}

type Tracker struct {
	client *feed.Client
	log    *slog.Logger

	sessionKey string
}

func New(client *feed.Client) *Tracker {
	return &Tracker{client: client, log: logger.For("presence")}
}

// Start records the session. Errors are logged, never returned: telemetry
// must not gate the storefront.
func (t *Tracker) Start(ctx context.Context) {
	device := deviceName()

	key, err := t.client.Push(ctx, "active_sessions", map[string]any{
		"device":     device,
		"login_time": serverTimestamp,
		"platform":   runtime.GOOS,
	})
	if err != nil {
		t.log.Warn("session write failed", "err", err)
	} else {
		t.sessionKey = key
		t.log.Debug("session written", "key", key)
	}

	if _, err := t.client.Push(ctx, "session_history", map[string]any{
		"device":        device,
		"timestamp":     serverTimestamp,
		"readable_time": time.Now().Format("2006-01-02 15:04:05"),
		"action":        "SESSION_START",
	}); err != nil {
		t.log.Warn("history write failed", "err", err)
	}
}

// Stop removes the live session entry. The backend's own on-disconnect
// hook covers crashes; this covers orderly shutdown.
func (t *Tracker) Stop(ctx context.Context) {
	if t.sessionKey == "" {
		return
	}
	if err := t.client.Delete(ctx, "active_sessions/"+t.sessionKey); err != nil {
		t.log.Warn("session cleanup failed", "err", err)
	}
	t.sessionKey = ""
}

func deviceName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return host + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
