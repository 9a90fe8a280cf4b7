package machine

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Coverage tracks which addresses have been executed at least once, for
// diagnosing dead code in a loaded image.
type Coverage struct {
	executed map[uint64]uint64 // address -> execution count
}

// NewCoverage returns an empty Coverage tracker.
func NewCoverage() *Coverage {
	return &Coverage{executed: make(map[uint64]uint64)}
}

// Record marks one execution of the instruction at r.PC.
func (c *Coverage) Record(r StepResult) {
	c.executed[r.PC]++
}

// Addresses returns the covered addresses in ascending order.
func (c *Coverage) Addresses() []uint64 {
	addrs := make([]uint64, 0, len(c.executed))
	for a := range c.executed {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

// WriteText writes one "0xADDR count" line per covered address.
func (c *Coverage) WriteText(w io.Writer) error {
	for _, addr := range c.Addresses() {
		if _, err := fmt.Fprintf(w, "0x%016x %d\n", addr, c.executed[addr]); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the coverage map as a JSON document.
func (c *Coverage) WriteJSON(w io.Writer) error {
	type entry struct {
		Address uint64 `json:"address"`
		Count   uint64 `json:"count"`
	}
	addrs := c.Addresses()
	out := make([]entry, len(addrs))
	for i, a := range addrs {
		out[i] = entry{Address: a, Count: c.executed[a]}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
