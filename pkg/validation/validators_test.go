package validation

import (
	"strings"
	"testing"
)

func TestIsValidSubreddit(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  bool
	}{
		{"golang", true},
		{"AskReddit", true},
		{"a_b_c", true},
		{"ab", false},
		{"", false},
		{"has spaces", false},
		{"r/golang", false},
		{strings.Repeat("a", 22), false},
	}

	for _, tc := range testCases {
		if got := IsValidSubreddit(tc.input); got != tc.want {
			t.Errorf("IsValidSubreddit(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsValidFullname(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input string
		want  bool
	}{
		{"t3_abc123", true},
		{"t1_z9", true},
		{"t7_abc", false},
		{"abc123", false},
		{"t3_", false},
		{"", false},
	}

	for _, tc := range testCases {
		if got := IsValidFullname(tc.input); got != tc.want {
			t.Errorf("IsValidFullname(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsValidUserAgent(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{"typical", "desktop:myapp:1.0 (by /u/me)", true},
		{"empty", "", false},
		{"newline", "bad\nagent", false},
		{"too long", strings.Repeat("a", 257), false},
	}

	for _, tc := range testCases {
		if got := IsValidUserAgent(tc.input); got != tc.want {
			t.Errorf("%s: IsValidUserAgent(%q) = %v, want %v", tc.name, tc.input, got, tc.want)
		}
	}
}
