package roster

import "strings"

// WatchEntry is one configured name to monitor: either a bare surname or a
// "Surname Given..." pair. Entries are static for the process lifetime.
type WatchEntry struct {
	raw    string
	tokens []string
}

// String returns the entry as configured.
func (e WatchEntry) String() string {
	return e.raw
}

// Watchlist is the set of names to alert on.
type Watchlist []WatchEntry

// ParseWatchlist builds a Watchlist from a comma-separated list of names.
// Blank entries are dropped.
func ParseWatchlist(csv string) Watchlist {
	var list Watchlist
	for _, part := range strings.Split(csv, ",") {
		raw := strings.TrimSpace(part)
		if raw == "" {
			continue
		}
		list = append(list, WatchEntry{
			raw:    raw,
			tokens: strings.Fields(strings.ToLower(raw)),
		})
	}
	return list
}

// Names returns the configured entries for startup logging.
func (w Watchlist) Names() []string {
	names := make([]string, 0, len(w))
	for _, e := range w {
		names = append(names, e.raw)
	}
	return names
}

// Matches reports whether a record's name satisfies any watch entry.
// Matching is deliberately permissive: the upstream source cases names
// inconsistently and sometimes truncates or expands first names, and a false
// positive only costs a harmless extra notification while a false negative
// defeats the watch. All comparisons operate on trimmed, lower-cased tokens.
//
// A single-token entry matches when either name equals the token. A
// multi-token entry is read as "Surname Given...": the last name must equal
// the first token and the recorded first name must start with the rest, so
// a configured "Smith Jon" still matches a recorded "Jonathan". The reverse
// reading ("Given Surname") is also tried, with exact equality on both.
func (w Watchlist) Matches(firstName, lastName string) bool {
	first := strings.ToLower(strings.TrimSpace(firstName))
	last := strings.ToLower(strings.TrimSpace(lastName))

	for _, entry := range w {
		if entry.matches(first, last) {
			return true
		}
	}
	return false
}

func (e WatchEntry) matches(first, last string) bool {
	switch len(e.tokens) {
	case 0:
		return false
	case 1:
		token := e.tokens[0]
		return last == token || first == token
	default:
		watchLast := e.tokens[0]
		watchFirst := strings.Join(e.tokens[1:], " ")
		if last == watchLast && strings.HasPrefix(first, watchFirst) {
			return true
		}
		// Entries supplied in "First Last" order.
		return first == e.tokens[0] && last == strings.Join(e.tokens[1:], " ")
	}
}
