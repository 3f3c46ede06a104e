package sketch

import (
	"fmt"
	"math"
)

// Run is a contiguous batch of vertices drawn with one primitive mode.
// A run starts at the sum of the lengths of all runs before it.
type Run struct {
	Mode   Mode `json:"mode"`
	Length int  `json:"length"`
}

// String returns a compact "MODE×length" form, used in logs.
func (r Run) String() string {
	return fmt.Sprintf("%s×%d", r.Mode, r.Length)
}

// RunLedger records how the flat vertex arrays decompose into runs.
// Insertion order is draw order is placement order.
//
// RunLedger is not safe for concurrent use.
type RunLedger struct {
	runs  []Run
	total int
}

// NewRunLedger creates an empty ledger.
func NewRunLedger() *RunLedger {
	return &RunLedger{runs: make([]Run, 0, 64)}
}

// RecordVertex accounts for one newly placed vertex. The last run is
// extended when it has the same mode; otherwise a new run of length 1 is
// started. It reports whether a new run was started.
func (l *RunLedger) RecordVertex(mode Mode) bool {
	l.total++
	if n := len(l.runs); n > 0 && l.runs[n-1].Mode == mode {
		l.runs[n-1].Length++
		return false
	}
	l.runs = append(l.runs, Run{Mode: mode, Length: 1})
	return true
}

// TotalVertices returns the sum of all run lengths.
func (l *RunLedger) TotalVertices() int {
	return l.total
}

// Len returns the number of runs.
func (l *RunLedger) Len() int {
	return len(l.runs)
}

// Last returns the most recent run.
func (l *RunLedger) Last() (Run, bool) {
	if len(l.runs) == 0 {
		return Run{}, false
	}
	return l.runs[len(l.runs)-1], true
}

// Runs returns a copy of the runs in draw order.
func (l *RunLedger) Runs() []Run {
	return append([]Run(nil), l.runs...)
}

// ReplaceAll replaces the ledger with runs, exactly as given. Adjacent runs
// with the same mode are not merged. On error the ledger is unchanged.
func (l *RunLedger) ReplaceAll(runs []Run) error {
	total, err := validateRuns(runs, math.MaxInt)
	if err != nil {
		return err
	}
	l.runs = append(l.runs[:0], runs...)
	l.total = total
	return nil
}

// validateRuns checks every run and returns the sum of their lengths,
// which may not exceed limit.
func validateRuns(runs []Run, limit int) (int, error) {
	total := 0
	for i, r := range runs {
		if !r.Mode.Valid() {
			return 0, fmt.Errorf("%w: run %d: unrecognized mode %d", ErrMalformedSnapshot, i, uint32(r.Mode))
		}
		if r.Length < 1 {
			return 0, fmt.Errorf("%w: run %d: length %d < 1", ErrMalformedSnapshot, i, r.Length)
		}
		if r.Length > limit-total {
			return 0, fmt.Errorf("%w: run %d: length %d exceeds the %d remaining vertices", ErrMalformedSnapshot, i, r.Length, limit-total)
		}
		total += r.Length
	}
	return total, nil
}
