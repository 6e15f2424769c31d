package table

// Merge combines a stored table with a freshly fetched one.
//
// The result has one row per date found in either input, sorted by date when
// read through Dates. Columns are prior's columns followed by fresh-only
// columns. For a date present in both inputs, fresh observations replace prior
// ones; a missing fresh cell leaves the prior observation in place. Neither
// input is modified.
func Merge(prior, fresh *Table) *Table {
	out := New(prior.Columns()...)
	for _, c := range fresh.Columns() {
		out.AddColumn(c)
	}
	out.overlay(prior)
	out.overlay(fresh)
	return out
}

// overlay copies every row of src into t, overwriting cells for which src has
// an observation.
func (t *Table) overlay(src *Table) {
	if src == nil {
		return
	}
	for d, row := range src.rows {
		t.EnsureRow(d)
		for i, name := range src.columns {
			if c := cellAt(row, i); c.Valid {
				t.Set(d, name, c)
			}
		}
	}
}

// Covers reports whether merging fresh into prior would leave prior
// unchanged: every fresh date already exists with identical observations and
// fresh adds no column.
func Covers(prior, fresh *Table) bool {
	return Merge(prior, fresh).Equal(prior)
}
