// Package bus dispatches architectural memory accesses to the mapped
// backing store. Today it is a passthrough to DRAM, but it is kept as an
// explicit indirection so a future MMIO or ROM region can be added without
// touching the executor.
package bus

import "github.com/fmash16/riscv-emulator/dram"

// Memory is the single mapped region the bus forwards to today.
type Memory interface {
	Load(addr, bits uint64) (uint64, error)
	Store(addr, bits, value uint64) error
}

// Bus routes all accesses to DRAM.
type Bus struct {
	DRAM Memory
}

// New returns a Bus backed by the given DRAM.
func New(d *dram.DRAM) *Bus {
	return &Bus{DRAM: d}
}

// Load reads bits-wide little-endian value at addr.
func (b *Bus) Load(addr, bits uint64) (uint64, error) {
	return b.DRAM.Load(addr, bits)
}

// Store writes the low bits-width bits of value at addr.
func (b *Bus) Store(addr, bits, value uint64) error {
	return b.DRAM.Store(addr, bits, value)
}
