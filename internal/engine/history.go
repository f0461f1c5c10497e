package engine

import (
	"encoding/json"
	"slices"
)

// History is the ordered table of per-tick snapshots, row 0 being the
// state before the first tick. Only the engine appends to it.
type History struct {
	rows []Snapshot
}

func newHistory() *History {
	return &History{rows: make([]Snapshot, 0, 64)}
}

func (h *History) append(s Snapshot) {
	h.rows = append(h.rows, s)
}

// Len is the number of rows.
func (h *History) Len() int {
	return len(h.rows)
}

// Row returns row i.
func (h *History) Row(i int) (Snapshot, bool) {
	if i < 0 || i >= len(h.rows) {
		return Snapshot{}, false
	}
	return h.rows[i], true
}

// Last returns the most recent row.
func (h *History) Last() Snapshot {
	if len(h.rows) == 0 {
		return Snapshot{}
	}
	return h.rows[len(h.rows)-1]
}

// Rows returns a copy of every row.
func (h *History) Rows() []Snapshot {
	return slices.Clone(h.rows)
}

// Since returns a copy of the rows with Tick >= tick.
func (h *History) Since(tick int) []Snapshot {
	i, _ := slices.BinarySearchFunc(h.rows, tick, func(s Snapshot, t int) int { return s.Tick - t })
	return slices.Clone(h.rows[i:])
}

// MarshalJSON encodes the table as an array of rows.
func (h *History) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.rows)
}
