package table

import (
	"testing"
)

func TestMerge_Scenario(t *testing.T) {
	prior := build(t, []string{"A", "B"},
		[]string{"2024-01-02", "10", "20"},
		[]string{"2024-01-03", "11", "21"},
	)
	fresh := build(t, []string{"A", "B", "C"},
		[]string{"2024-01-03", "11.5", "21", "31"},
		[]string{"2024-01-04", "12", "22", "32"},
	)

	merged := Merge(prior, fresh)

	if merged.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", merged.Len())
	}
	cols := merged.Columns()
	if len(cols) != 3 || cols[0] != "A" || cols[1] != "B" || cols[2] != "C" {
		t.Errorf("Columns() = %v, want [A B C]", cols)
	}
	if got := merged.Get(date("2024-01-03"), "A"); !CellsEqual(got, val("11.5")) {
		t.Errorf("01-03 A = %s, want 11.5 (fresh value)", FormatCell(got))
	}
	if got := merged.Get(date("2024-01-02"), "C"); got.Valid {
		t.Errorf("01-02 C = %s, want missing", FormatCell(got))
	}
	if got := merged.Get(date("2024-01-02"), "A"); !CellsEqual(got, val("10")) {
		t.Errorf("01-02 A = %s, want 10", FormatCell(got))
	}
	if got := merged.Get(date("2024-01-04"), "C"); !CellsEqual(got, val("32")) {
		t.Errorf("01-04 C = %s, want 32", FormatCell(got))
	}
}

func TestMerge_EmptyPrior(t *testing.T) {
	fresh := build(t, []string{"A", "B"},
		[]string{"2024-01-02", "1", "2"},
		[]string{"2024-01-03", "3", ""},
	)

	for name, prior := range map[string]*Table{"nil": nil, "empty": New()} {
		t.Run(name, func(t *testing.T) {
			merged := Merge(prior, fresh)
			if !merged.Equal(fresh) {
				t.Errorf("Merge(empty, fresh) = %v, want fresh unchanged", merged.Records())
			}
		})
	}
}

func TestMerge_Idempotent(t *testing.T) {
	prior := build(t, []string{"A"},
		[]string{"2024-01-02", "1"},
	)
	fresh := build(t, []string{"A", "B"},
		[]string{"2024-01-02", "1.1", ""},
		[]string{"2024-01-03", "", "5"},
	)

	once := Merge(prior, fresh)
	twice := Merge(once, fresh)
	if !once.Equal(twice) {
		t.Errorf("merging twice changed the table:\nonce  %v\ntwice %v", once.Records(), twice.Records())
	}
}

func TestMerge_LastWriteWins(t *testing.T) {
	prior := build(t, []string{"A"}, []string{"2024-01-02", "1"})
	fresh := build(t, []string{"A"}, []string{"2024-01-02", "2"})

	if got := Merge(prior, fresh).Get(date("2024-01-02"), "A"); !CellsEqual(got, val("2")) {
		t.Errorf("merged value = %s, want 2", FormatCell(got))
	}
}

func TestMerge_MissingFreshCellKeepsPrior(t *testing.T) {
	prior := build(t, []string{"A", "B"}, []string{"2024-01-02", "1", "2"})
	fresh := build(t, []string{"A"}, []string{"2024-01-02", ""})

	merged := Merge(prior, fresh)
	if got := merged.Get(date("2024-01-02"), "A"); !CellsEqual(got, val("1")) {
		t.Errorf("A = %s, want 1", FormatCell(got))
	}
	if got := merged.Get(date("2024-01-02"), "B"); !CellsEqual(got, val("2")) {
		t.Errorf("B = %s, want 2", FormatCell(got))
	}
}

func TestMerge_NoDuplicateDatesAndColumnSuperset(t *testing.T) {
	prior := build(t, []string{"X", "Y"},
		[]string{"2024-01-01", "1", "1"},
		[]string{"2024-01-02", "2", "2"},
		[]string{"2024-01-05", "5", ""},
	)
	fresh := build(t, []string{"Z", "X"},
		[]string{"2024-01-02", "9", "9"},
		[]string{"2024-01-03", "3", "3"},
		[]string{"2024-01-05", "", "6"},
	)

	merged := Merge(prior, fresh)

	seen := map[string]bool{}
	for _, rec := range merged.Records()[1:] {
		if seen[rec[0]] {
			t.Errorf("duplicate date %s", rec[0])
		}
		seen[rec[0]] = true
	}
	if len(seen) != 4 {
		t.Errorf("distinct dates = %d, want 4", len(seen))
	}

	want := map[string]bool{"X": true, "Y": true, "Z": true}
	cols := merged.Columns()
	if len(cols) != len(want) {
		t.Errorf("Columns() = %v, want union of X Y Z", cols)
	}
	for _, c := range cols {
		if !want[c] {
			t.Errorf("unexpected column %q", c)
		}
	}
}

func TestMerge_DoesNotModifyInputs(t *testing.T) {
	prior := build(t, []string{"A"}, []string{"2024-01-02", "1"})
	fresh := build(t, []string{"B"}, []string{"2024-01-03", "2"})
	priorBefore := prior.Records()

	Merge(prior, fresh)

	if len(prior.Columns()) != 1 || prior.Len() != 1 {
		t.Errorf("prior changed: %v, was %v", prior.Records(), priorBefore)
	}
}

func TestCovers(t *testing.T) {
	prior := build(t, []string{"A", "B"},
		[]string{"2024-01-02", "1", "2"},
		[]string{"2024-01-03", "3", "4"},
	)

	tests := []struct {
		name  string
		fresh *Table
		want  bool
	}{
		{
			name:  "same values",
			fresh: build(t, []string{"A", "B"}, []string{"2024-01-03", "3.0", "4"}),
			want:  true,
		},
		{
			name:  "subset of columns",
			fresh: build(t, []string{"B"}, []string{"2024-01-02", "2"}),
			want:  true,
		},
		{
			name:  "changed value",
			fresh: build(t, []string{"A", "B"}, []string{"2024-01-03", "3.1", "4"}),
			want:  false,
		},
		{
			name:  "new date",
			fresh: build(t, []string{"A", "B"}, []string{"2024-01-04", "5", "6"}),
			want:  false,
		},
		{
			name:  "new column",
			fresh: build(t, []string{"A", "C"}, []string{"2024-01-03", "3", "7"}),
			want:  false,
		},
		{
			name:  "empty fresh",
			fresh: New("A", "B"),
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Covers(prior, tt.fresh); got != tt.want {
				t.Errorf("Covers() = %v, want %v", got, tt.want)
			}
		})
	}
}
