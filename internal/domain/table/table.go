// Package table holds the raw tabular form of loaded records and the
// schema normalizer that guarantees a fixed column set.
package table

// Cell is one value of a table. Valid == false is the explicit absent marker.
type Cell struct {
	Value string
	Valid bool
}

// Text returns a present cell.
func Text(v string) Cell { return Cell{Value: v, Valid: true} }

// Absent returns the absent marker.
func Absent() Cell { return Cell{} }

// Table is an ordered set of named columns and rows of cells aligned to them.
// Tables are treated as immutable once built; every transform returns a copy.
type Table struct {
	Columns []string
	Rows    [][]Cell
}

// Empty returns a zero-row table with the given columns.
func Empty(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...), Rows: [][]Cell{}}
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Index returns the position of the first column called name, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Has reports whether the table carries a column called name.
func (t Table) Has(name string) bool { return t.Index(name) >= 0 }

// Cell returns the value at row for column name. Unknown columns and
// short rows yield the absent marker.
func (t Table) Cell(row int, name string) Cell {
	if row < 0 || row >= len(t.Rows) {
		return Absent()
	}
	return at(t.Rows[row], t.Index(name))
}

// Column returns every cell of column name, absent where missing.
func (t Table) Column(name string) []Cell {
	idx := t.Index(name)
	out := make([]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = at(row, idx)
	}
	return out
}

// Clone returns a deep copy.
func (t Table) Clone() Table {
	rows := make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = append([]Cell(nil), row...)
	}
	return Table{Columns: append([]string(nil), t.Columns...), Rows: rows}
}

// Equal reports whether both tables have the same columns and cells.
func (t Table) Equal(o Table) bool {
	if len(t.Columns) != len(o.Columns) || len(t.Rows) != len(o.Rows) {
		return false
	}
	for i := range t.Columns {
		if t.Columns[i] != o.Columns[i] {
			return false
		}
	}
	for i := range t.Rows {
		if len(t.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range t.Rows[i] {
			if t.Rows[i][j] != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

func at(row []Cell, idx int) Cell {
	if idx < 0 || idx >= len(row) {
		return Absent()
	}
	return row[idx]
}
