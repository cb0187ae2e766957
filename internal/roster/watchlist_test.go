package roster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseWatchlist(t *testing.T) {
	list := ParseWatchlist(" Doe , Smith Jon ,, ")
	assert.Equal(t, []string{"Doe", "Smith Jon"}, list.Names())

	assert.Empty(t, ParseWatchlist(""))
	assert.Empty(t, ParseWatchlist(" , ,"))
}

func TestWatchlistMatches(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		first string
		last  string
		want  bool
	}{
		{name: "surname only matches last name", entry: "Doe", first: "John", last: "Doe", want: true},
		{name: "surname only matches first name", entry: "Doe", first: "Doe", last: "Smith", want: true},
		{name: "surname only case insensitive", entry: "doe", first: "JOHN", last: "DOE", want: true},
		{name: "surname only no match", entry: "Doe", first: "John", last: "Smith", want: false},
		{name: "surname first-name pair exact", entry: "Doe John", first: "John", last: "Doe", want: true},
		{name: "first name prefix expands", entry: "Doe John", first: "Johnathan", last: "Doe", want: true},
		{name: "prefix does not apply reversed", entry: "Doe John", first: "Jon", last: "Doe", want: false},
		{name: "reverse order exact", entry: "John Doe", first: "John", last: "Doe", want: true},
		{name: "reverse order requires exact first", entry: "John Doe", first: "Johnathan", last: "Doe", want: false},
		{name: "multi-token given name", entry: "Doe John Paul", first: "John Paul", last: "Doe", want: true},
		{name: "last name mismatch", entry: "Doe John", first: "John", last: "Roe", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := ParseWatchlist(tt.entry)
			assert.Equal(t, tt.want, list.Matches(tt.first, tt.last))
		})
	}
}

func TestWatchlistShortCircuitsAcrossEntries(t *testing.T) {
	list := ParseWatchlist("Nobody, Doe")
	assert.True(t, list.Matches("John", "Doe"))
	assert.False(t, Watchlist(nil).Matches("John", "Doe"))
}
