// Package imgproxy rewrites image URLs hosted on known-slow origins to a
// resizing, WebP-converting proxy. Anything else passes through untouched.
package imgproxy

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	proxyBase = "https://wsrv.nl/"

	// DefaultWidth matches the catalog grid; the game requests 200.
	DefaultWidth = 600

	slowHost = "drive.google.com"
)

// Optimize returns a proxied, resized, WebP variant of original when it
// points at a slow host, and original unchanged otherwise. width <= 0
// falls back to DefaultWidth.
func Optimize(original string, width int) string {
	if !strings.Contains(original, slowHost) {
		return original
	}
	if width <= 0 {
		width = DefaultWidth
	}

	// The proxy wants the source without its scheme.
	clean := strings.Replace(original, "https://", "", 1)
	return fmt.Sprintf("%s?url=%s&w=%d&output=webp&q=80", proxyBase, url.QueryEscape(clean), width)
}
