package game

import (
	"errors"
	"math/rand"

	"github.com/shashiranjanraj/kankarej/app/models"
	"github.com/shashiranjanraj/kankarej/pkg/collection"
)

// ErrPoolTooSmall reports that the product pool cannot seed even a
// minimal deck. The engine stays in StatusFetchingData and waits for a
// bigger pool instead of dealing a degenerate board.
var ErrPoolTooSmall = errors.New("game: product pool too small for a deck")

// minPairs is the smallest playable board. When the pool holds fewer
// distinct products than the requested pair count, the deck shrinks to
// what the pool can cover, down to this floor.
const minPairs = 2

// Card is one face of the board. ID is the positional index within the
// shuffled deck, not a product identifier: every product appears on two
// cards, and product identity is its name.
type Card struct {
	ID      int
	Product models.Product
	Flipped bool
	Matched bool
}

// BuildDeck samples pairs distinct products from pool, doubles the
// selection and shuffles the resulting 2×pairs cards. It returns the deck
// alongside the sampled products (whose images the caller preloads).
func BuildDeck(pool []models.Product, pairs int, rng *rand.Rand) ([]Card, []models.Product, error) {
	distinct := collection.UniqueBy(pool, func(p models.Product) string { return p.Name })
	if pairs > len(distinct) {
		pairs = len(distinct)
	}
	if pairs < minPairs {
		return nil, nil, ErrPoolTooSmall
	}

	picks := collection.Take(collection.Shuffle(distinct, rng), pairs)

	doubled := make([]models.Product, 0, 2*len(picks))
	doubled = append(doubled, picks...)
	doubled = append(doubled, picks...)

	cards := make([]Card, 0, len(doubled))
	for i, p := range collection.Shuffle(doubled, rng) {
		cards = append(cards, Card{ID: i, Product: p})
	}
	return cards, picks, nil
}
