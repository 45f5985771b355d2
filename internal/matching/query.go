package matching

import (
	"net/url"
	"strconv"
	"strings"
)

// IntParam reads an integer query parameter. Missing, non-numeric, or
// out-of-range values yield def. A max of 0 means no upper bound.
func IntParam(q url.Values, name string, def, minVal, maxVal int) int {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minVal {
		return def
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

// QueryValue returns the trimmed first value of a query parameter and whether
// it was present with a non-empty value.
func QueryValue(q url.Values, name string) (string, bool) {
	v := strings.TrimSpace(q.Get(name))
	return v, v != ""
}
