package game

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shashiranjanraj/kankarej/pkg/logger"
)

// Preloader warms whatever image cache sits between the game and the
// proxy before the countdown starts, so the first card flip never shows
// a loading placeholder.
type Preloader interface {
	// Preload blocks until every URL has been fetched or an internal
	// bound elapses. It never fails the round: a cold image is a
	// cosmetic problem, not a game error.
	Preload(urls []string)
}

// HTTPPreloader fetches each URL with a bounded worker set, discarding
// the bodies. Fetching through the proxy also populates its edge cache.
type HTTPPreloader struct {
	Client  *http.Client
	Workers int           // concurrent fetches, default 4
	Timeout time.Duration // bound on the whole batch, default 15s
}

func (p *HTTPPreloader) Preload(urls []string) {
	if len(urls) == 0 {
		return
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	workers := p.Workers
	if workers <= 0 {
		workers = 4
	}
	if workers > len(urls) {
		workers = len(urls)
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	log := logger.For("preload")
	tasks := make(chan string)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for url := range tasks {
				fetchImage(ctx, client, url, log)
			}
		}()
	}

feed:
	for _, url := range urls {
		select {
		case tasks <- url:
		case <-ctx.Done():
			break feed
		}
	}
	close(tasks)
	wg.Wait()
}

func fetchImage(ctx context.Context, client *http.Client, url string, log *slog.Logger) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Warn("preload skipped", "url", url, "err", err)
		return
	}
	resp, err := client.Do(req)
	if err != nil {
		log.Warn("preload failed", "url", url, "err", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
}
