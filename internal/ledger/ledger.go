// Package ledger implements the per-day check-in/check-out attendance
// record. Each identity owns one row; every calendar date seen by any
// identity introduces a shared pair of "<date> (IN)" / "<date> (OUT)"
// columns that applies to all rows.
package ledger

import (
	"fmt"
	"time"
)

// Fixed prefix columns, in serialization order.
const (
	ColName     = "Name"
	ColContact  = "Contact Number"
	ColEmployID = "Employ ID"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Status is the per-identity, per-date attendance state.
type Status int

const (
	Absent Status = iota
	CheckedIn
	CheckedOut
)

func (s Status) String() string {
	switch s {
	case CheckedIn:
		return "checked in"
	case CheckedOut:
		return "checked out"
	default:
		return "absent"
	}
}

// Row is one identity's attendance record, keyed by column name. Missing
// values are absent keys or empty strings; both serialize as empty fields.
type Row map[string]string

// Ledger holds all attendance rows plus the ordered column set. Column
// order matters for serialization: the three prefix columns first, then
// date column pairs in the order those dates were first encountered.
type Ledger struct {
	Columns []string
	Rows    []Row
}

// New creates an empty ledger with just the prefix columns.
func New() *Ledger {
	return &Ledger{
		Columns: []string{ColName, ColContact, ColEmployID},
	}
}

// PrefixColumns returns the fixed leading column names.
func PrefixColumns() []string {
	return []string{ColName, ColContact, ColEmployID}
}

// InColumn returns the check-in column name for a date.
func InColumn(date string) string { return fmt.Sprintf("%s (IN)", date) }

// OutColumn returns the check-out column name for a date.
func OutColumn(date string) string { return fmt.Sprintf("%s (OUT)", date) }

// DateOf formats the calendar date of a timestamp the way date columns
// are keyed.
func DateOf(now time.Time) string { return now.Format(dateLayout) }

// Record applies one recognition event at time now for the identity with
// the given name. The first event of a date sets the IN time; every
// subsequent event that date overwrites the OUT time. There is no terminal
// state for a day: a third or later event keeps overwriting OUT, and IN is
// never cleared once set.
func (l *Ledger) Record(name, contact, employID string, now time.Time) Status {
	date := now.Format(dateLayout)
	clock := now.Format(timeLayout)
	in, out := InColumn(date), OutColumn(date)

	l.ensureColumns(in, out)

	for _, row := range l.Rows {
		if row[ColName] != name {
			continue
		}
		if row[in] == "" {
			row[in] = clock
			return CheckedIn
		}
		row[out] = clock
		return CheckedOut
	}

	row := Row{
		ColName:     name,
		ColContact:  contact,
		ColEmployID: employID,
		in:          clock,
	}
	l.Rows = append(l.Rows, row)
	return CheckedIn
}

// Status reports the attendance state of an identity on a date.
func (l *Ledger) Status(name, date string) Status {
	row, ok := l.RowFor(name)
	if !ok {
		return Absent
	}
	if row[InColumn(date)] == "" {
		return Absent
	}
	if row[OutColumn(date)] == "" {
		return CheckedIn
	}
	return CheckedOut
}

// RowFor returns the row for an identity name, if one exists.
func (l *Ledger) RowFor(name string) (Row, bool) {
	for _, row := range l.Rows {
		if row[ColName] == name {
			return row, true
		}
	}
	return nil, false
}

// HasDate reports whether the column pair for a date has been introduced.
func (l *Ledger) HasDate(date string) bool {
	in := InColumn(date)
	for _, col := range l.Columns {
		if col == in {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the ledger. The attendance service mutates a
// clone and swaps it in only after the mutated document is durable, so a
// failed save leaves the live ledger untouched.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{
		Columns: append([]string(nil), l.Columns...),
		Rows:    make([]Row, len(l.Rows)),
	}
	for i, row := range l.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

func (l *Ledger) ensureColumns(in, out string) {
	for _, col := range l.Columns {
		if col == in {
			return
		}
	}
	l.Columns = append(l.Columns, in, out)
}
