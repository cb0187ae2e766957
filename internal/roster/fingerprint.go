package roster

import "strings"

// Fingerprint derives the deterministic identity key for a record. It is a
// pure function of the split record fields, so two scrapes of the same
// booking produce the same key across process restarts. Empty fields are
// omitted rather than encoded as empty segments.
func Fingerprint(rec BookingRecord) string {
	fields := []string{
		rec.LastName,
		rec.FirstName,
		rec.Date,
		rec.BookingNumber,
	}
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "|")
}
