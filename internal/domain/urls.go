package domain

import (
	"net/url"
	"strings"
)

// CleanURL repairs the historical backslash corruption seen in persisted
// server URLs: a URL containing a backslash is lowercased in full and every
// backslash becomes a forward slash. URLs without backslashes pass through
// untouched, casing included. Downstream comparisons depend on that
// asymmetry, so it stays.
func CleanURL(u string) string {
	if strings.Contains(u, "\\") {
		return strings.ReplaceAll(strings.ToLower(u), "\\", "/")
	}
	return u
}

// IsValidURL reports whether s parses as a URL with both a scheme and a
// host. Team server URLs must satisfy this after CleanURL.
func IsValidURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// IsValidURI is the weaker predicate used for trust-store keys: parseable
// with a scheme. Custom app protocol origins carry no authority part.
func IsValidURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}
