package machine

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fmash16/riscv-emulator/cpu"
)

// RegisterTrace observes the GPR file before and after each step and
// records which registers changed, since the core does not instrument
// writes at the point they happen (spec.md keeps the register file a plain
// indexed store with no write hooks).
type RegisterTrace struct {
	Writer  io.Writer
	entries []registerChange
	prev    [cpu.NumRegisters]uint64
}

type registerChange struct {
	Sequence uint64 `json:"sequence"`
	PC       uint64 `json:"pc"`
	Register string `json:"register"`
	Old      uint64 `json:"old"`
	New      uint64 `json:"new"`
}

// NewRegisterTrace returns a RegisterTrace seeded from the machine's
// current register values, so the first Observe call only reports actual
// changes.
func NewRegisterTrace(w io.Writer, m *Machine) *RegisterTrace {
	rt := &RegisterTrace{Writer: w}
	rt.prev = m.CPU.X
	return rt
}

// Observe compares m's current registers against the last-seen snapshot and
// records every index that changed.
func (rt *RegisterTrace) Observe(m *Machine, r StepResult) {
	for i := 0; i < cpu.NumRegisters; i++ {
		cur := m.CPU.X[i]
		if cur != rt.prev[i] {
			rt.entries = append(rt.entries, registerChange{
				Sequence: m.Cycles,
				PC:       r.PC,
				Register: cpu.ABINames[i],
				Old:      rt.prev[i],
				New:      cur,
			})
			rt.prev[i] = cur
		}
	}
}

// WriteText writes one line per recorded change.
func (rt *RegisterTrace) WriteText(w io.Writer) error {
	for _, e := range rt.entries {
		if _, err := fmt.Fprintf(w, "#%d pc=0x%016x %s: 0x%x -> 0x%x\n", e.Sequence, e.PC, e.Register, e.Old, e.New); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the recorded changes as a JSON array.
func (rt *RegisterTrace) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rt.entries)
}
