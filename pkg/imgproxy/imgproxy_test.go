package imgproxy_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/kankarej/pkg/imgproxy"
)

func TestOptimizeRewritesSlowHost(t *testing.T) {
	got := imgproxy.Optimize("https://drive.google.com/uc?id=abc123", 600)

	require.True(t, strings.HasPrefix(got, "https://wsrv.nl/?url="))
	assert.Contains(t, got, "&w=600")
	assert.Contains(t, got, "&output=webp")
	assert.Contains(t, got, "&q=80")

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "drive.google.com/uc?id=abc123", u.Query().Get("url"),
		"source must round-trip through the proxy query, scheme stripped")
}

func TestOptimizePassesThroughFastHosts(t *testing.T) {
	for _, original := range []string{
		"https://cdn.example.com/turmeric.jpg",
		"https://images.unsplash.com/photo-1?w=800",
		"",
	} {
		assert.Equal(t, original, imgproxy.Optimize(original, 600))
	}
}

func TestOptimizeDefaultsWidth(t *testing.T) {
	got := imgproxy.Optimize("https://drive.google.com/uc?id=abc", 0)
	assert.Contains(t, got, "&w=600")

	got = imgproxy.Optimize("https://drive.google.com/uc?id=abc", 200)
	assert.Contains(t, got, "&w=200")
}
