package matching

import (
	"fmt"
	"net/url"
	"strings"
)

// Template is a parsed path template such as "/api/users/:id".
type Template struct {
	raw      string
	segments []segment
	literals int
}

type segment struct {
	literal string
	param   string
}

func (s segment) isParam() bool { return s.param != "" }

// ParseTemplate parses a path template. The template must start with "/".
// Parameter segments are written ":name"; names must be non-empty and unique.
func ParseTemplate(tmpl string) (*Template, error) {
	if !strings.HasPrefix(tmpl, "/") {
		return nil, fmt.Errorf("template %q must start with /", tmpl)
	}

	parts := SplitPath(tmpl)
	t := &Template{raw: tmpl, segments: make([]segment, 0, len(parts))}
	seen := make(map[string]bool)

	for _, part := range parts {
		if name, ok := strings.CutPrefix(part, ":"); ok {
			if name == "" {
				return nil, fmt.Errorf("template %q has an unnamed parameter", tmpl)
			}
			if seen[name] {
				return nil, fmt.Errorf("template %q repeats parameter %q", tmpl, name)
			}
			seen[name] = true
			t.segments = append(t.segments, segment{param: name})
			continue
		}
		if part == "" {
			return nil, fmt.Errorf("template %q has an empty segment", tmpl)
		}
		t.segments = append(t.segments, segment{literal: part})
		t.literals++
	}

	return t, nil
}

// String returns the template as written.
func (t *Template) String() string { return t.raw }

// Literals returns the number of literal segments.
func (t *Template) Literals() int { return t.literals }

// Params returns the parameter names in declaration order.
func (t *Template) Params() []string {
	var names []string
	for _, s := range t.segments {
		if s.isParam() {
			names = append(names, s.param)
		}
	}
	return names
}

// Score returns the specificity score of the template. Route listings
// show it; ordering itself uses Compare.
func (t *Template) Score() int {
	return t.literals*ScoreLiteralSegment + (len(t.segments)-t.literals)*ScoreParamSegment
}

// Match reports whether path matches the template and returns the extracted
// parameters. Parameter values are URL-unescaped; a value that fails to
// unescape is kept verbatim.
func (t *Template) Match(path string) (map[string]string, bool) {
	parts := SplitPath(path)
	if len(parts) != len(t.segments) {
		return nil, false
	}

	var params map[string]string
	for i, seg := range t.segments {
		part := parts[i]
		if !seg.isParam() {
			if seg.literal != part {
				return nil, false
			}
			continue
		}
		if part == "" {
			return nil, false
		}
		if params == nil {
			params = make(map[string]string, len(t.segments)-t.literals)
		}
		if v, err := url.PathUnescape(part); err == nil {
			part = v
		}
		params[seg.param] = part
	}

	if params == nil {
		params = map[string]string{}
	}
	return params, true
}

// Compare orders two templates by specificity. It returns a negative number
// when a is more specific than b, a positive number when b is more specific,
// and zero when both have the same shape.
func Compare(a, b *Template) int {
	if a.literals != b.literals {
		return b.literals - a.literals
	}
	n := min(len(a.segments), len(b.segments))
	for i := 0; i < n; i++ {
		ap, bp := a.segments[i].isParam(), b.segments[i].isParam()
		if ap == bp {
			continue
		}
		if !ap {
			return -1
		}
		return 1
	}
	return len(b.segments) - len(a.segments)
}

// MatchMethod reports whether the request method satisfies the route method.
// The comparison is exact apart from letter case; HEAD is not implied by GET.
func MatchMethod(routeMethod, requestMethod string) bool {
	return strings.EqualFold(routeMethod, requestMethod)
}

// SplitPath splits a URL path into segments, ignoring leading and trailing
// slashes. The root path yields no segments.
func SplitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
