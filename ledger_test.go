package sketch

import (
	"errors"
	"slices"
	"testing"
)

func TestRunLedgerSegmentation(t *testing.T) {
	l := NewRunLedger()
	modes := []Mode{Points, Points, LineStrip, LineStrip, LineStrip, Points}
	wantNew := []bool{true, false, true, false, false, true}
	for i, m := range modes {
		if got := l.RecordVertex(m); got != wantNew[i] {
			t.Errorf("RecordVertex(%v) #%d = %v, want %v", m, i, got, wantNew[i])
		}
	}

	want := []Run{{Points, 2}, {LineStrip, 3}, {Points, 1}}
	if got := l.Runs(); !slices.Equal(got, want) {
		t.Errorf("Runs() = %v, want %v", got, want)
	}
	if l.TotalVertices() != len(modes) {
		t.Errorf("TotalVertices() = %d, want %d", l.TotalVertices(), len(modes))
	}
	if last, ok := l.Last(); !ok || last != (Run{Points, 1}) {
		t.Errorf("Last() = %v, %v, want POINTS×1, true", last, ok)
	}
}

// TestRunLedgerInvariant checks after every vertex that the run lengths
// sum to the vertex count and that adjacent runs differ in mode.
func TestRunLedgerInvariant(t *testing.T) {
	l := NewRunLedger()
	seq := []Mode{Triangles, Triangles, Triangles, Lines, TriangleFan, TriangleFan, Lines, Lines, Points}
	for i, m := range seq {
		l.RecordVertex(m)
		runs := l.Runs()
		sum := 0
		for j, r := range runs {
			sum += r.Length
			if j > 0 && runs[j-1].Mode == r.Mode {
				t.Fatalf("after vertex %d: adjacent runs %d and %d share mode %v", i, j-1, j, r.Mode)
			}
		}
		if sum != i+1 || l.TotalVertices() != i+1 {
			t.Fatalf("after vertex %d: sum = %d, TotalVertices = %d, want %d", i, sum, l.TotalVertices(), i+1)
		}
	}
}

func TestRunLedgerEmpty(t *testing.T) {
	l := NewRunLedger()
	if l.Len() != 0 || l.TotalVertices() != 0 {
		t.Errorf("empty ledger Len() = %d, TotalVertices() = %d", l.Len(), l.TotalVertices())
	}
	if _, ok := l.Last(); ok {
		t.Error("Last() on empty ledger reported ok")
	}
}

func TestRunLedgerRunsCopy(t *testing.T) {
	l := NewRunLedger()
	l.RecordVertex(Lines)
	runs := l.Runs()
	runs[0].Length = 99
	if last, _ := l.Last(); last.Length != 1 {
		t.Error("Runs() returned a slice aliasing the ledger")
	}
}

func TestRunLedgerReplaceAll(t *testing.T) {
	l := NewRunLedger()
	l.RecordVertex(Points)

	// Adjacent runs with the same mode are kept as given.
	runs := []Run{{LineStrip, 2}, {LineStrip, 3}, {Triangles, 3}}
	if err := l.ReplaceAll(runs); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if got := l.Runs(); !slices.Equal(got, runs) {
		t.Errorf("Runs() = %v, want %v", got, runs)
	}
	if l.TotalVertices() != 8 {
		t.Errorf("TotalVertices() = %d, want 8", l.TotalVertices())
	}

	// New vertices extend the restored last run.
	if l.RecordVertex(Triangles) {
		t.Error("RecordVertex(TRIANGLES) after restore started a new run")
	}
}

func TestRunLedgerReplaceAllErrors(t *testing.T) {
	tests := []struct {
		name string
		runs []Run
	}{
		{"zero length", []Run{{Points, 0}}},
		{"negative length", []Run{{Lines, 2}, {Points, -1}}},
		{"bad mode", []Run{{Mode(42), 1}}},
		{"length sum overflows", []Run{{Points, 1 << 62}, {Lines, 1 << 62}, {Points, 1 << 62}, {Lines, 1<<62 + 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewRunLedger()
			l.RecordVertex(Triangles)
			if err := l.ReplaceAll(tt.runs); !errors.Is(err, ErrMalformedSnapshot) {
				t.Fatalf("ReplaceAll() error = %v, want ErrMalformedSnapshot", err)
			}
			if got := l.Runs(); !slices.Equal(got, []Run{{Triangles, 1}}) {
				t.Errorf("Runs() after failed ReplaceAll = %v", got)
			}
			if l.TotalVertices() != 1 {
				t.Errorf("TotalVertices() after failed ReplaceAll = %d, want 1", l.TotalVertices())
			}
		})
	}
}

func TestRunString(t *testing.T) {
	if got := (Run{TriangleFan, 4}).String(); got != "TRIANGLE_FAN×4" {
		t.Errorf("String() = %q, want %q", got, "TRIANGLE_FAN×4")
	}
}
