package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintIsDeterministic(t *testing.T) {
	rec := BookingRecord{
		LastName:      "Doe",
		FirstName:     "John",
		Date:          "01/02/2024",
		BookingNumber: "123",
	}
	assert.Equal(t, Fingerprint(rec), Fingerprint(rec))
	assert.Equal(t, "Doe|John|01/02/2024|123", Fingerprint(rec))
}

func TestFingerprintOmitsEmptyFields(t *testing.T) {
	rec := BookingRecord{LastName: "Roe", Date: "01/03/2024"}
	assert.Equal(t, "Roe|01/03/2024", Fingerprint(rec))

	rec.BookingNumber = "  "
	assert.Equal(t, "Roe|01/03/2024", Fingerprint(rec))
}

func TestFingerprintIgnoresDisplayName(t *testing.T) {
	a := BookingRecord{LastName: "Doe", FirstName: "John", Date: "01/02/2024", FullNameDisplay: "DOE, JOHN"}
	b := BookingRecord{LastName: "Doe", FirstName: "John", Date: "01/02/2024", FullNameDisplay: "Doe,John"}
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}
