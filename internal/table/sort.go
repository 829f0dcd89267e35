// Package table holds the column and sort model shared by the console's list views.
package table

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind selects the comparator used for a column.
type Kind int

const (
	Text Kind = iota
	Number
	Date
)

// Sort indicators rendered next to column headers.
const (
	IndicatorNone = "↕️"
	IndicatorAsc  = "↑"
	IndicatorDesc = "↓"
)

// Column describes one sortable column of rows of type T.
type Column[T any] struct {
	ID    string
	Label string
	Kind  Kind
	// Cell renders the displayed value.
	Cell func(T) string
	// Key returns the value compared when sorting; Cell is used when nil.
	Key func(T) string
}

func (c Column[T]) key(row T) string {
	if c.Key != nil {
		return c.Key(row)
	}
	return c.Cell(row)
}

// SortDescriptor is the active sort column and direction. The zero value means unsorted.
type SortDescriptor struct {
	Column    string
	Ascending bool
}

// Toggle applies a header click: the same column flips direction, a new column starts ascending.
func (d *SortDescriptor) Toggle(column string) {
	if d.Column == column {
		d.Ascending = !d.Ascending
		return
	}
	d.Column = column
	d.Ascending = true
}

// Indicator returns the header arrow for column.
func (d SortDescriptor) Indicator(column string) string {
	if d.Column != column {
		return IndicatorNone
	}
	if d.Ascending {
		return IndicatorAsc
	}
	return IndicatorDesc
}

// Find returns the column with id.
func Find[T any](cols []Column[T], id string) (Column[T], bool) {
	for _, c := range cols {
		if c.ID == id {
			return c, true
		}
	}
	return Column[T]{}, false
}

// Sort orders rows in place by the descriptor's column. Unknown or empty columns leave rows untouched.
// Equal keys keep their relative order.
func Sort[T any](rows []T, cols []Column[T], d SortDescriptor) {
	col, ok := Find(cols, d.Column)
	if !ok {
		return
	}
	compare := Comparator(col.Kind)
	slices.SortStableFunc(rows, func(a, b T) int {
		c := compare(col.key(a), col.key(b))
		if !d.Ascending {
			return -c
		}
		return c
	})
}

// Comparator returns the ordering for values of kind. Text uses locale collation, so it must
// not be shared between goroutines.
func Comparator(kind Kind) func(a, b string) int {
	switch kind {
	case Number:
		return compareNumbers
	case Date:
		return compareDates
	default:
		coll := collate.New(language.English)
		return func(a, b string) int {
			return coll.CompareString(a, b)
		}
	}
}

func compareNumbers(a, b string) int {
	x, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	y, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return cmp.Compare(x, y)
}

func compareDates(a, b string) int {
	x, errA := parseDay(a)
	y, errB := parseDay(b)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(a, b)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	return x.Compare(y)
}

func parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
