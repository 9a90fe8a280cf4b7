// Package csr is a flat, indexed store for control/status registers.
// It performs no masking, no side effects, and no privilege checks: every
// 12-bit index is readable and writable. Privileged-mode semantics are out
// of scope for this core.
package csr

// NumCSRs is the number of addressable CSR slots (12-bit index space).
const NumCSRs = 4096

// File is the flat CSR register file.
type File struct {
	regs [NumCSRs]uint64
}

// New returns a zeroed CSR file.
func New() *File {
	return &File{}
}

// Read returns the value stored at index (index masked to 12 bits).
func (f *File) Read(index uint64) uint64 {
	return f.regs[index&(NumCSRs-1)]
}

// Write replaces the value stored at index (index masked to 12 bits).
func (f *File) Write(index, value uint64) {
	f.regs[index&(NumCSRs-1)] = value
}
