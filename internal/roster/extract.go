package roster

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrNoResultsTable signals that the page contains no table at all. This is
// distinct from a table with zero rows: a missing table usually means the
// upstream markup changed or the request is being soft-blocked, and callers
// must route it to the escalation policy instead of treating it as an empty
// result set.
var ErrNoResultsTable = errors.New("no results table found on page")

// Extract parses a results page into booking records. It locates the table
// marked with the search-results class, falling back to the first table on
// the page, and returns ErrNoResultsTable when neither exists.
func Extract(html string) ([]BookingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	table := doc.Find("table.search-results").First()
	if table.Length() == 0 {
		table = doc.Find("table").First()
	}
	if table.Length() == 0 {
		return nil, ErrNoResultsTable
	}

	rows := dataRows(table)
	records := make([]BookingRecord, 0, rows.Length())
	rows.Each(func(_ int, row *goquery.Selection) {
		if rec, ok := parseRow(row); ok {
			records = append(records, rec)
		}
	})
	return records, nil
}

// dataRows returns the table's data rows: the tbody rows when a tbody is
// explicitly delimited, otherwise every row minus the first (assumed header).
func dataRows(table *goquery.Selection) *goquery.Selection {
	if tbody := table.Find("tbody").First(); tbody.Length() > 0 {
		return tbody.Find("tr")
	}
	all := table.Find("tr")
	if all.Length() <= 1 {
		return all.Slice(0, 0)
	}
	return all.Slice(1, all.Length())
}

func parseRow(row *goquery.Selection) (BookingRecord, bool) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return BookingRecord{}, false
	}

	nameCell := cells.Eq(0)
	var display, number string
	if link := nameCell.Find("a").First(); link.Length() > 0 {
		display = strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		number = trailingSegment(href)
	} else {
		display = strings.TrimSpace(nameCell.Text())
	}

	last, first := splitDisplayName(display)
	if last == "" {
		return BookingRecord{}, false
	}

	return BookingRecord{
		LastName:        last,
		FirstName:       first,
		Date:            strings.TrimSpace(cells.Eq(1).Text()),
		BookingNumber:   number,
		FullNameDisplay: display,
	}, true
}

// splitDisplayName splits "Last, First" on the first comma. Names without a
// comma are treated as a bare surname.
func splitDisplayName(display string) (last, first string) {
	if before, after, found := strings.Cut(display, ","); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return strings.TrimSpace(display), ""
}

// trailingSegment extracts the booking identifier from a link target such as
// /PAID/Home/Booking/1638002.
func trailingSegment(href string) string {
	if href == "" {
		return ""
	}
	segments := strings.Split(href, "/")
	return segments[len(segments)-1]
}
