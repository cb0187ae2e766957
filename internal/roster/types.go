// Package roster defines the core types and logic for extracting and
// matching jail-roster records: table extraction, record identity, and
// watchlist matching.
package roster

// Search type codes accepted by the PAID SearchResults form.
const (
	SearchNowInCustody      = "0"
	SearchReleasedLast7Days = "1"
	SearchEmergencyReleases = "2"
	SearchBookedLast7Days   = "3"
	SearchBookedToday       = "4"
	SearchBookedYesterday   = "5"
)

// BookingRecord is one row extracted from a results page. Records are
// created fresh on every extraction pass and never mutated; only the
// fingerprint outlives the cycle that produced them.
type BookingRecord struct {
	// LastName is always non-empty; rows that yield no name are dropped
	// during extraction rather than surfaced as records.
	LastName string
	// FirstName may be empty when the source lists a surname only.
	FirstName string
	// Date is the second cell's text exactly as displayed by the source.
	// No calendar format is guaranteed, so it is treated as opaque.
	Date string
	// BookingNumber is the trailing path segment of the name cell's link,
	// empty when the cell carries no link.
	BookingNumber string
	// FullNameDisplay is the raw "Last, First" text before splitting.
	FullNameDisplay string
}
