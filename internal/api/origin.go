package api

import "strings"

// DefaultOrigins are allowed when no CORS origins are configured
var DefaultOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// OriginChecker matches request origins against patterns with at most one
// "*" wildcard, the same syntax go-chi/cors accepts.
type OriginChecker struct {
	patterns []string
}

// NewOriginChecker builds a checker; an empty list uses DefaultOrigins
func NewOriginChecker(origins []string) *OriginChecker {
	if len(origins) == 0 {
		origins = DefaultOrigins
	}
	return &OriginChecker{patterns: origins}
}

// Allowed reports whether origin matches any pattern. A missing Origin header
// is a non-browser client and is allowed.
func (c *OriginChecker) Allowed(origin string) bool {
	if origin == "" {
		return true
	}
	for _, p := range c.patterns {
		if p == "*" || p == origin {
			return true
		}
		if prefix, suffix, ok := strings.Cut(p, "*"); ok {
			if len(origin) >= len(prefix)+len(suffix) &&
				strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return true
			}
		}
	}
	return false
}
