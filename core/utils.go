package core

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var nonSlugRegex = regexp.MustCompile(`[^a-z0-9]+`)

// NowFunc returns the current time; mockable in tests.
var NowFunc = time.Now

// NewID returns a new opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Slugify derives a human-readable secondary key from a record name,
// prefixed with the entity kind. e.g. Slugify("Web Dev", "course") -> "course-web-dev".
func Slugify(name, kind string) string {
	s := nonSlugRegex.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if kind == "" {
		return s
	}
	return kind + "-" + s
}

// FormatDateTime renders an instant in the dashboard's display format.
func FormatDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}

// ParseClock parses a wall-clock "HH:MM" value.
func ParseClock(clock string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, 0, err
	}
	return t.Hour(), t.Minute(), nil
}

// ContainsString reports whether id appears in ids.
func ContainsString(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// DistinctCategories returns the distinct non-empty category values of recs
// in first-seen order.
func DistinctCategories[T any](recs []T, category func(T) string) []string {
	seen := make(map[string]struct{}, len(recs))
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		cat := category(rec)
		if cat == "" {
			continue
		}
		if _, ok := seen[cat]; ok {
			continue
		}
		seen[cat] = struct{}{}
		out = append(out, cat)
	}
	return out
}
