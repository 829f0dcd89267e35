package console

import (
	"net/url"
	"strconv"

	"github.com/jw6ventures/carrental-console/internal/table"
)

// Action is a per-row control.
type Action struct {
	Label string
	URL   string
	Class string
}

// Header is one column header of a rendered table.
type Header struct {
	ID        string
	Label     string
	Indicator string
	SortURL   string
}

type Row struct {
	ID      int64
	Cells   []string
	Actions []Action
}

// Table is the render model of the bookings and customers views. When the collection is
// empty Rows is nil and Empty holds the text of the single placeholder row.
type Table struct {
	Headers     []Header
	Rows        []Row
	ShowActions bool
	Empty       string
	Colspan     int
}

func buildTable[T any](cols []table.Column[T], sort table.SortDescriptor, path string, snap *snapshot[T],
	id func(T) int64, actions func(T) []Action, showActions bool, empty string) Table {
	t := Table{ShowActions: showActions, Colspan: len(cols)}
	if showActions {
		t.Colspan++
	}
	for _, c := range cols {
		t.Headers = append(t.Headers, Header{
			ID:        c.ID,
			Label:     c.Label,
			Indicator: sort.Indicator(c.ID),
			SortURL:   path + "?sort=" + url.QueryEscape(c.ID),
		})
	}
	if snap.failed {
		return t
	}
	if len(snap.rows) == 0 {
		t.Empty = empty
		return t
	}
	for _, item := range snap.rows {
		row := Row{ID: id(item)}
		for _, c := range cols {
			row.Cells = append(row.Cells, c.Cell(item))
		}
		if showActions {
			row.Actions = actions(item)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func editDelete(base string, id int64) []Action {
	return []Action{
		{Label: "Edit", URL: base + "/" + itoa(id) + "/edit", Class: "btn-standard"},
		{Label: "Delete", URL: base + "/" + itoa(id) + "/delete", Class: "btn-negative"},
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }
