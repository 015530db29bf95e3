package feed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kankarej/app/models"
	"github.com/shashiranjanraj/kankarej/pkg/feed"
)

func TestSnapshotChildTraversal(t *testing.T) {
	snap := feed.NewSnapshot("", map[string]any{
		"store": map[string]any{
			"name": "Kankarej Spices",
			"open": true,
		},
	})

	assert.Equal(t, "Kankarej Spices", snap.Child("store").Child("name").String())
	assert.True(t, snap.Child("store").Child("open").Bool())

	missing := snap.Child("nope").Child("deeper")
	assert.False(t, missing.Exists())
	assert.Equal(t, "", missing.String())
	assert.Equal(t, 0, missing.Len())
}

func TestSnapshotChildrenAreKeySorted(t *testing.T) {
	snap := feed.NewSnapshot("", map[string]any{
		"c": 3, "a": 1, "b": 2,
	})

	kids := snap.Children()
	require.Len(t, kids, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{kids[0].Key, kids[1].Key, kids[2].Key})
	assert.Equal(t, 1, kids[0].Int())
}

func TestSnapshotArrayChildrenSkipHoles(t *testing.T) {
	snap := feed.NewSnapshot("", []any{"first", nil, "third"})

	kids := snap.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, "0", kids[0].Key)
	assert.Equal(t, "2", kids[1].Key)
	assert.Equal(t, "third", kids[1].String())
}

func TestSnapshotScalarCoercion(t *testing.T) {
	snap := feed.NewSnapshot("", map[string]any{
		"stringyInt": "42",
		"floatyInt":  float64(7), // every JSON number decodes as float64
		"intishBool": 1,
	})

	assert.Equal(t, 42, snap.Child("stringyInt").Int())
	assert.Equal(t, 7, snap.Child("floatyInt").Int())
	assert.True(t, snap.Child("intishBool").Bool())
}

func TestSnapshotDecodeProduct(t *testing.T) {
	snap := feed.NewSnapshot("p1", map[string]any{
		"name":     "Turmeric Powder",
		"price":    "80", // stored loosely by the backend
		"category": "Ground Spices",
		"rating":   4,
		"imageUrl": "https://cdn.example.com/turmeric.jpg",
	})

	var p models.Product
	require.NoError(t, snap.Decode(&p))
	assert.Equal(t, "Turmeric Powder", p.Name)
	assert.Equal(t, 80, p.Price)
	assert.Equal(t, float64(4), p.Rating)
	assert.Equal(t, "https://cdn.example.com/turmeric.jpg", p.ImageURL)
}

func TestSnapshotDecodeRejectsScalars(t *testing.T) {
	snap := feed.NewSnapshot("bad", "just a string")
	var p models.Product
	assert.Error(t, snap.Decode(&p))
}
