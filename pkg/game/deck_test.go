package game_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kankarej/pkg/game"
)

func TestBuildDeckComposition(t *testing.T) {
	pool := productPool("Turmeric", "Cumin", "Chili", "Coriander", "Cardamom", "Clove", "Fennel", "Ajwain")
	rng := rand.New(rand.NewSource(42))

	cards, picks, err := game.BuildDeck(pool, 6, rng)
	require.NoError(t, err)
	require.Len(t, cards, 12)
	require.Len(t, picks, 6)

	counts := map[string]int{}
	for i, c := range cards {
		assert.Equal(t, i, c.ID)
		assert.False(t, c.Flipped)
		assert.False(t, c.Matched)
		counts[c.Product.Name]++
	}
	require.Len(t, counts, 6, "deck must hold exactly 6 distinct products")
	for name, n := range counts {
		assert.Equal(t, 2, n, "product %q must appear on exactly two cards", name)
	}
}

func TestBuildDeckShrinksToPool(t *testing.T) {
	pool := productPool("Turmeric", "Cumin", "Chili", "Coriander")
	cards, picks, err := game.BuildDeck(pool, 6, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, picks, 4)
	assert.Len(t, cards, 8)
}

func TestBuildDeckDedupesByName(t *testing.T) {
	// the same spice listed under two categories is still one pair
	pool := productPool("Turmeric", "Turmeric", "Cumin", "Chili")
	cards, picks, err := game.BuildDeck(pool, 6, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Len(t, picks, 3)
	assert.Len(t, cards, 6)
}

func TestBuildDeckRejectsTinyPool(t *testing.T) {
	_, _, err := game.BuildDeck(productPool("Turmeric"), 6, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, game.ErrPoolTooSmall)

	_, _, err = game.BuildDeck(nil, 6, rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, err, game.ErrPoolTooSmall)
}

func TestBuildDeckLeavesPoolAlone(t *testing.T) {
	pool := productPool("Turmeric", "Cumin", "Chili", "Coriander", "Cardamom", "Clove")
	before := make([]string, len(pool))
	for i, p := range pool {
		before[i] = p.Name
	}

	_, _, err := game.BuildDeck(pool, 6, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	for i, p := range pool {
		assert.Equal(t, before[i], p.Name)
	}
}
