package table

import (
	"strconv"
	"testing"
)

type row struct {
	id   int
	name string
	n    int
	day  string
}

var cols = []Column[row]{
	{ID: "id", Label: "ID", Kind: Number, Cell: func(r row) string { return strconv.Itoa(r.id) }},
	{ID: "name", Label: "Name", Kind: Text, Cell: func(r row) string { return r.name }},
	{ID: "n", Label: "N", Kind: Number, Cell: func(r row) string { return strconv.Itoa(r.n) }},
	{ID: "day", Label: "Day", Kind: Date, Cell: func(r row) string { return r.day }},
}

func ids(rows []row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

func equal(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestToggle(t *testing.T) {
	var d SortDescriptor
	d.Toggle("name")
	if d.Column != "name" || !d.Ascending {
		t.Fatalf("first click = %+v, want name ascending", d)
	}
	d.Toggle("name")
	if d.Ascending {
		t.Fatalf("second click on same column should be descending")
	}
	d.Toggle("n")
	if d.Column != "n" || !d.Ascending {
		t.Fatalf("new column must reset to ascending, got %+v", d)
	}
	before := d
	d.Toggle("n")
	d.Toggle("n")
	if d != before {
		t.Fatalf("double toggle = %+v, want %+v", d, before)
	}
}

func TestIndicator(t *testing.T) {
	d := SortDescriptor{Column: "day", Ascending: true}
	if got := d.Indicator("day"); got != IndicatorAsc {
		t.Errorf("Indicator(active asc) = %q", got)
	}
	if got := d.Indicator("id"); got != IndicatorNone {
		t.Errorf("Indicator(inactive) = %q", got)
	}
	d.Ascending = false
	if got := d.Indicator("day"); got != IndicatorDesc {
		t.Errorf("Indicator(active desc) = %q", got)
	}
}

func TestSortKinds(t *testing.T) {
	rows := []row{
		{id: 1, name: "beta", n: 10, day: "2024-02-01"},
		{id: 2, name: "alpha", n: 9, day: "2023-12-31"},
		{id: 3, name: "Gamma", n: 100, day: "2024-01-15"},
	}

	tests := []struct {
		name string
		d    SortDescriptor
		want []int
	}{
		{name: "numbers compare numerically", d: SortDescriptor{Column: "n", Ascending: true}, want: []int{2, 1, 3}},
		{name: "numbers descending", d: SortDescriptor{Column: "n"}, want: []int{3, 1, 2}},
		{name: "text uses collation not byte order", d: SortDescriptor{Column: "name", Ascending: true}, want: []int{2, 1, 3}},
		{name: "dates compare as dates", d: SortDescriptor{Column: "day", Ascending: true}, want: []int{2, 3, 1}},
		{name: "unknown column keeps order", d: SortDescriptor{Column: "nope", Ascending: true}, want: []int{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := append([]row(nil), rows...)
			Sort(got, cols, tt.d)
			if !equal(ids(got), tt.want) {
				t.Fatalf("Sort() = %v, want %v", ids(got), tt.want)
			}
		})
	}
}

func TestSameColumnTwiceRestoresOrder(t *testing.T) {
	rows := []row{
		{id: 4, name: "d", n: 3},
		{id: 1, name: "a", n: 1},
		{id: 3, name: "c", n: 7},
		{id: 2, name: "b", n: 5},
	}
	d := SortDescriptor{Column: "name", Ascending: true}
	Sort(rows, cols, d)
	before := ids(rows)

	d.Toggle("name")
	Sort(rows, cols, d)
	if equal(ids(rows), before) {
		t.Fatal("first click should reverse the order")
	}
	d.Toggle("name")
	Sort(rows, cols, d)
	if !equal(ids(rows), before) {
		t.Fatalf("two clicks = %v, want %v", ids(rows), before)
	}
}

func TestKeyOverridesCell(t *testing.T) {
	type booking struct{ active int }
	c := []Column[booking]{{
		ID:   "active",
		Kind: Number,
		Cell: func(b booking) string {
			if b.active == 1 {
				return "Active"
			}
			return "Inactive"
		},
		Key: func(b booking) string { return strconv.Itoa(b.active) },
	}}
	rows := []booking{{1}, {0}, {1}}
	Sort(rows, c, SortDescriptor{Column: "active", Ascending: true})
	if rows[0].active != 0 {
		t.Fatalf("expected inactive first, got %+v", rows)
	}
}
