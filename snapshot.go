package sketch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Snapshot is the serialized form of a whole drawing: the run ledger and
// the flat position and color arrays, in placement order.
//
// The JSON form is a single array. Every entry but the last two is a run
// record; the last two are the positions and the colors:
//
//	[
//	  {"mode": "LINE_STRIP", "length": 3},
//	  {"mode": "POINTS", "length": 1},
//	  [-0.5, 0.5, 0, 0, 0.5, 0.5, 0.25, -0.25],
//	  [1, 0, 0, 1, 0, 0, 1, 0, 0, 0, 0, 1]
//	]
//
// Run modes are written by name. Numeric GL values are accepted on input.
// A document with no run records at all loads as a single POINTS run.
type Snapshot struct {
	Runs      []Run
	Positions []float32
	Colors    []float32
}

// VertexCount returns the number of vertices in the position array.
func (s Snapshot) VertexCount() int {
	return len(s.Positions) / PositionComponents
}

// Validate checks the structural invariants of a snapshot: array lengths
// are whole vertices, positions and colors describe the same number of
// vertices, every run is valid, and the runs cover exactly those vertices.
// Failures wrap ErrMalformedSnapshot.
func (s Snapshot) Validate() error {
	n, err := vertexCount(s.Positions, s.Colors)
	if err != nil {
		return err
	}
	total, err := validateRuns(s.Runs, n)
	if err != nil {
		return err
	}
	if total != n {
		return fmt.Errorf("%w: runs cover %d vertices, arrays hold %d", ErrMalformedSnapshot, total, n)
	}
	return nil
}

// Serialize captures the contents of a store and ledger.
func Serialize(store *GeometryStore, ledger *RunLedger) Snapshot {
	positions, colors := store.ExportAll()
	return Snapshot{Runs: ledger.Runs(), Positions: positions, Colors: colors}
}

// Deserialize decodes and validates a JSON snapshot document.
func Deserialize(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		if !errors.Is(err, ErrMalformedSnapshot) {
			err = fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		return Snapshot{}, err
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}

// Encode writes s to w as an indented JSON document.
func Encode(w io.Writer, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Decode reads and validates a JSON snapshot document from r.
func Decode(r io.Reader) (Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, err
	}
	return Deserialize(data)
}

// runRecord is the JSON shape of one run entry.
type runRecord struct {
	Mode   json.RawMessage `json:"mode"`
	Length int             `json:"length"`
}

// MarshalJSON implements json.Marshaler.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	entries := make([]any, 0, len(s.Runs)+2)
	for _, r := range s.Runs {
		entries = append(entries, r)
	}
	positions, colors := s.Positions, s.Colors
	if positions == nil {
		positions = []float32{}
	}
	if colors == nil {
		colors = []float32{}
	}
	entries = append(entries, positions, colors)
	return json.Marshal(entries)
}

// UnmarshalJSON implements json.Unmarshaler. It checks the document shape
// and decodes every entry; use Validate for the cross-entry invariants.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("%w: document is not an array: %v", ErrMalformedSnapshot, err)
	}
	if len(entries) < 2 {
		return fmt.Errorf("%w: %d entries, want run records followed by positions and colors",
			ErrMalformedSnapshot, len(entries))
	}

	var out Snapshot
	if err := decodeFloats(entries[len(entries)-2], &out.Positions); err != nil {
		return fmt.Errorf("%w: positions: %v", ErrMalformedSnapshot, err)
	}
	if err := decodeFloats(entries[len(entries)-1], &out.Colors); err != nil {
		return fmt.Errorf("%w: colors: %v", ErrMalformedSnapshot, err)
	}

	records := entries[:len(entries)-2]
	out.Runs = make([]Run, 0, len(records))
	for i, raw := range records {
		run, err := decodeRun(raw)
		if err != nil {
			return fmt.Errorf("%w: run %d: %v", ErrMalformedSnapshot, i, err)
		}
		out.Runs = append(out.Runs, run)
	}
	if len(out.Runs) == 0 && len(out.Positions) > 0 {
		out.Runs = append(out.Runs, Run{Mode: Points, Length: out.VertexCount()})
	}

	*s = out
	return nil
}

func decodeFloats(raw json.RawMessage, dst *[]float32) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("null array")
	}
	var v []float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v == nil {
		v = []float32{}
	}
	*dst = v
	return nil
}

func decodeRun(raw json.RawMessage) (Run, error) {
	var rec runRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Run{}, err
	}
	if len(rec.Mode) == 0 {
		return Run{}, fmt.Errorf("missing mode")
	}
	var tag string
	if rec.Mode[0] == '"' {
		if err := json.Unmarshal(rec.Mode, &tag); err != nil {
			return Run{}, err
		}
	} else {
		n, err := strconv.ParseUint(string(rec.Mode), 10, 32)
		if err != nil {
			return Run{}, fmt.Errorf("mode %s is neither a name nor a GL enum", rec.Mode)
		}
		tag = strconv.FormatUint(n, 10)
	}
	mode, err := ParseMode(tag)
	if err != nil {
		return Run{}, err
	}
	if rec.Length < 1 {
		return Run{}, fmt.Errorf("length %d < 1", rec.Length)
	}
	return Run{Mode: mode, Length: rec.Length}, nil
}
