package ideas

import (
	"fmt"
	"strings"
)

// ValidateURL checks that raw is a Reddit post permalink and returns it
// cleaned: query string dropped and trailing slashes removed.
// The checks run against the cleaned form, so ValidateURL(ValidateURL(u))
// always equals ValidateURL(u).
func ValidateURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: URL cannot be empty", ErrInvalidInput)
	}

	clean, _, _ := strings.Cut(trimmed, "?")
	clean = strings.TrimRight(clean, "/")

	lower := strings.ToLower(clean)
	if !strings.Contains(lower, "reddit.com/") && !strings.Contains(lower, "redd.it/") {
		return "", fmt.Errorf("%w: not a Reddit URL: %s", ErrInvalidInput, trimmed)
	}

	if !strings.Contains(clean, "/comments/") {
		return "", fmt.Errorf("%w: URL must be a Reddit post (must contain /comments/): %s", ErrInvalidInput, trimmed)
	}

	return clean, nil
}

// ExtractSubreddit returns the subreddit name from a post URL, or "unknown".
//
//	https://reddit.com/r/Foo/comments/abc/title → Foo
func ExtractSubreddit(url string) string {
	_, rest, ok := strings.Cut(url, "/r/")
	if !ok {
		return "unknown"
	}
	name, _, _ := strings.Cut(rest, "/")
	if name == "" {
		return "unknown"
	}
	return name
}
