package cache

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^0-9A-Za-z_]`)

// URLToKey maps a tile source URL to a deterministic, filesystem-safe key:
// the scheme is stripped and every non-word character becomes an underscore.
// The same key format is used for the memory cache, loose disk tiles and
// region-scoped disk tiles, so a tile fetched once is recognized under every
// namespace.
func URLToKey(url string) string {
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	return nonWord.ReplaceAllString(url, "_")
}
