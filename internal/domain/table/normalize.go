package table

// Normalize returns a copy of t that carries every expected column.
//
// Original columns keep their order and values, unknown extra columns pass
// through, and each missing expected column is appended (in expected order)
// filled with absent cells. Rows shorter than the column set are padded with
// absent cells. Normalize never fails and is idempotent.
func Normalize(t Table, expected []string) Table {
	columns := append([]string(nil), t.Columns...)
	for _, name := range expected {
		if !contains(columns, name) {
			columns = append(columns, name)
		}
	}

	rows := make([][]Cell, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]Cell, len(columns))
		copy(out, row)
		rows[i] = out
	}
	return Table{Columns: columns, Rows: rows}
}

// Missing lists the expected columns t does not carry.
func Missing(t Table, expected []string) []string {
	var out []string
	for _, name := range expected {
		if !t.Has(name) {
			out = append(out, name)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
