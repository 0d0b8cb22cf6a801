// Package validation provides format checks for Reddit API parameters.
package validation

import "regexp"

var (
	// subredditRegex matches valid subreddit names (3-21 chars, alphanumeric + underscore).
	subredditRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,21}$`)

	// fullnameRegex matches Reddit fullname IDs (type prefix + base36 ID), e.g. "t3_abc123".
	fullnameRegex = regexp.MustCompile(`^t[1-6]_[0-9a-z]+$`)
)

const maxUserAgentLength = 256

// IsValidSubreddit checks if a string is a valid subreddit name.
func IsValidSubreddit(s string) bool {
	return subredditRegex.MatchString(s)
}

// IsValidFullname checks if a string is a valid Reddit fullname ID.
// Pagination cursors take this form.
func IsValidFullname(s string) bool {
	return fullnameRegex.MatchString(s)
}

// IsValidUserAgent checks if a string is usable as a User-Agent header value.
func IsValidUserAgent(s string) bool {
	if s == "" || len(s) > maxUserAgentLength {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}
