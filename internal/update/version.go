package update

import (
	"fmt"
	"strings"
	"unicode"
)

// Version is a release identifier reduced to its digits. "1.0.0",
// " 1.0.0\n" and "100" all reduce to the same Version.
type Version struct {
	Digits string
	Raw    string
}

// Normalize strips whitespace (including CR/LF) and dot separators.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '.' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// ParseVersion reduces s to a digit string.
// Returns ErrInvalidVersion when anything other than ASCII digits remains.
func ParseVersion(s string) (Version, error) {
	digits := Normalize(s)
	if digits == "" {
		return Version{}, fmt.Errorf("%w: empty version string", ErrInvalidVersion)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, strings.TrimSpace(s))
		}
	}
	return Version{Digits: digits, Raw: strings.TrimSpace(s)}, nil
}

// String returns the version as it was written, minus surrounding whitespace.
func (v Version) String() string {
	if v.Raw != "" {
		return v.Raw
	}
	return v.Digits
}

// Compare orders versions by byte-wise comparison of their digit strings.
// Returns -1, 0 or 1. The ordering is lexical, so "10" sorts before "9".
func (v Version) Compare(other Version) int {
	return strings.Compare(v.Digits, other.Digits)
}

// LessThan returns true if v < other.
func (v Version) LessThan(other Version) bool {
	return v.Compare(other) < 0
}

// Equal returns true if both versions reduce to the same digits.
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// Older reports whether current is older than latest. Unlike IsOlder it
// separates "not older" from "could not compare": either side failing to
// parse yields ErrInvalidVersion.
func Older(current, latest string) (bool, error) {
	c, err := ParseVersion(current)
	if err != nil {
		return false, fmt.Errorf("current version: %w", err)
	}
	l, err := ParseVersion(latest)
	if err != nil {
		return false, fmt.Errorf("latest version: %w", err)
	}
	return c.LessThan(l), nil
}

// IsOlder is the boolean form of Older. Invalid input reports false, which
// is indistinguishable from "equal or newer"; use Older when that matters.
func IsOlder(current, latest string) bool {
	older, err := Older(current, latest)
	return err == nil && older
}
