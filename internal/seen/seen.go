// Package seen tracks which booking fingerprints have already triggered a
// notification, with file and Postgres persistence providers.
package seen

import "encoding/json"

// Bucket separates booked events from released events; the same fingerprint
// may legitimately appear in both.
type Bucket string

// Persisted buckets. The names double as the JSON keys of the state file.
const (
	Booked   Bucket = "booked"
	Released Bucket = "released"
)

// Set holds the previously notified fingerprints. It is append-only:
// membership is the sole gate for re-notification, so nothing is ever
// removed. Insertion order is preserved for persistence, with a map index on
// the side so membership checks stay O(1) as the set grows.
type Set struct {
	order map[Bucket][]string
	index map[Bucket]map[string]struct{}
}

// NewSet returns an empty Set.
func NewSet() *Set {
	return &Set{
		order: map[Bucket][]string{},
		index: map[Bucket]map[string]struct{}{},
	}
}

// Has reports whether the fingerprint was already notified in the bucket.
func (s *Set) Has(bucket Bucket, fingerprint string) bool {
	_, ok := s.index[bucket][fingerprint]
	return ok
}

// Add records a fingerprint. It returns false when the fingerprint was
// already present.
func (s *Set) Add(bucket Bucket, fingerprint string) bool {
	if s.Has(bucket, fingerprint) {
		return false
	}
	if s.index[bucket] == nil {
		s.index[bucket] = map[string]struct{}{}
	}
	s.index[bucket][fingerprint] = struct{}{}
	s.order[bucket] = append(s.order[bucket], fingerprint)
	return true
}

// Len returns the number of fingerprints in the bucket.
func (s *Set) Len(bucket Bucket) int {
	return len(s.order[bucket])
}

// Fingerprints returns the bucket's fingerprints in insertion order.
func (s *Set) Fingerprints(bucket Bucket) []string {
	out := make([]string, len(s.order[bucket]))
	copy(out, s.order[bucket])
	return out
}

// document is the on-disk shape: {"booked": [...], "released": [...]}.
type document struct {
	Booked   []string `json:"booked"`
	Released []string `json:"released"`
}

// MarshalJSON writes both buckets in insertion order.
func (s *Set) MarshalJSON() ([]byte, error) {
	doc := document{
		Booked:   s.order[Booked],
		Released: s.order[Released],
	}
	if doc.Booked == nil {
		doc.Booked = []string{}
	}
	if doc.Released == nil {
		doc.Released = []string{}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON rebuilds the set, deduplicating any repeated entries.
func (s *Set) UnmarshalJSON(data []byte) error {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*s = *NewSet()
	for _, fp := range doc.Booked {
		s.Add(Booked, fp)
	}
	for _, fp := range doc.Released {
		s.Add(Released, fp)
	}
	return nil
}
