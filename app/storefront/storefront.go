// Package storefront composes the client's pieces — feed client, catalog
// cache, score store, presence telemetry, game factory — into the one
// object a UI (or the CLI) holds.
package storefront

import (
	"github.com/shashiranjanraj/kankarej/app/models"
	"github.com/shashiranjanraj/kankarej/config"
	"github.com/shashiranjanraj/kankarej/pkg/catalog"
	"github.com/shashiranjanraj/kankarej/pkg/feed"
	"github.com/shashiranjanraj/kankarej/pkg/game"
	"github.com/shashiranjanraj/kankarej/pkg/presence"
	"github.com/shashiranjanraj/kankarej/pkg/score"
)

type Storefront struct {
	Feed     *feed.Client
	Catalog  *catalog.Cache
	Scores   *score.Store
	Presence *presence.Tracker
}

// New wires a Storefront from configuration.
func New() (*Storefront, error) {
	client := feed.NewClient(config.FeedBaseURL(), config.FeedTimeout())
	scores, err := score.Open(config.ScoreDBPath())
	if err != nil {
		return nil, err
	}
	return &Storefront{
		Feed:     client,
		Catalog:  catalog.New(client),
		Scores:   scores,
		Presence: presence.New(client),
	}, nil
}

func (s *Storefront) Close() error {
	return s.Scores.Close()
}

// NewGame builds a game engine persisting into the shared score store.
func (s *Storefront) NewGame() *game.Engine {
	return game.New(game.Options{
		Pairs:  config.GamePairs(),
		Scores: s.Scores,
		Preloader: &game.HTTPPreloader{
			Workers: config.PreloadWorkers(),
			Timeout: config.PreloadTimeout(),
		},
	})
}

// WatchContact streams contact_info updates. The returned stop function
// releases the server-side listener; always call it on teardown.
func (s *Storefront) WatchContact() (<-chan models.ContactInfo, func()) {
	sub := s.Feed.Subscribe("contact_info")
	out := make(chan models.ContactInfo, 1)
	go func() {
		defer close(out)
		for snap := range sub.Updates() {
			var info models.ContactInfo
			if err := snap.Decode(&info); err != nil {
				continue
			}
			deliver(out, info)
		}
	}()
	return out, sub.Cancel
}

// WatchBanners streams the sliding banner list.
func (s *Storefront) WatchBanners() (<-chan []models.Banner, func()) {
	sub := s.Feed.Subscribe("slidingbanner")
	out := make(chan []models.Banner, 1)
	go func() {
		defer close(out)
		for snap := range sub.Updates() {
			var banners []models.Banner
			for _, child := range snap.Children() {
				var b models.Banner
				if err := child.Decode(&b); err != nil {
					continue
				}
				banners = append(banners, b)
			}
			deliver(out, banners)
		}
	}()
	return out, sub.Cancel
}

// WatchProducts streams the flattened product pool; feed it into a game
// engine's ProvidePool or use it to refresh UI state.
func (s *Storefront) WatchProducts() (<-chan []models.Product, func()) {
	sub := s.Feed.Subscribe("products")
	out := make(chan []models.Product, 1)
	go func() {
		defer close(out)
		for snap := range sub.Updates() {
			deliver(out, catalog.Flatten(snap))
		}
	}()
	return out, sub.Cancel
}

// deliver is a latest-wins send: a slow consumer sees the newest update
// rather than a backlog, and a cancelled one never wedges the stream.
func deliver[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
