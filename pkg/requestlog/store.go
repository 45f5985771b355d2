package requestlog

// Logger is the minimal interface for recording entries.
type Logger interface {
	Log(entry *Entry)
}

// Store is a queryable request history.
type Store interface {
	Logger

	// Get retrieves an entry by ID, or nil.
	Get(id string) *Entry

	// List returns entries newest first, optionally filtered.
	List(filter *Filter) []*Entry

	// Clear removes all entries.
	Clear()

	// Count returns the number of stored entries.
	Count() int
}

// Filter defines criteria for listing entries. Zero fields match all.
type Filter struct {
	Method string
	// Path matches by prefix.
	Path    string
	Outcome string
	Route   string
	Status  int

	// Limit is the maximum number of entries to return.
	Limit int
	// Offset is the number of entries to skip.
	Offset int
}

func (f *Filter) matches(e *Entry) bool {
	if f.Method != "" && e.Method != f.Method {
		return false
	}
	if f.Path != "" && !matchesPathPrefix(e.Path, f.Path) {
		return false
	}
	if f.Outcome != "" && e.Outcome != f.Outcome {
		return false
	}
	if f.Route != "" && e.Route != f.Route {
		return false
	}
	if f.Status != 0 && e.Status != f.Status {
		return false
	}
	return true
}

func matchesPathPrefix(path, prefix string) bool {
	return len(prefix) <= len(path) && path[:len(prefix)] == prefix
}
