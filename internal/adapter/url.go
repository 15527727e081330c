package adapter

import "strings"

// BaseURL trims whitespace and a trailing slash and defaults the scheme to https.
// Empty input stays empty.
func BaseURL(raw string) string {
	u := strings.TrimSpace(raw)
	if u == "" {
		return ""
	}
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		u = "https://" + strings.TrimPrefix(u, "//")
	}
	return strings.TrimRight(u, "/")
}
