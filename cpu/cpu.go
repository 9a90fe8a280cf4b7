// Package cpu holds the integer register file and program counter: the
// architectural state every instruction reads and writes. Register x0 is
// hardwired to zero; slot 2 (sp) is seeded from the caller-supplied DRAM
// size at reset time, since this package has no other way to learn the
// configured DRAM extent.
package cpu

import "github.com/fmash16/riscv-emulator/dram"

// NumRegisters is the size of the integer register file (x0..x31).
const NumRegisters = 32

// Register aliases used by the loader/stepper and by the register dump.
const (
	Zero = 0
	RA   = 1
	SP   = 2
	GP   = 3
	TP   = 4
)

// ABINames gives each register its standard ABI display name, in index
// order, for the register dump.
var ABINames = [NumRegisters]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// State is the 32-register integer file plus the 64-bit program counter.
type State struct {
	X  [NumRegisters]uint64
	PC uint64

	// dramSize is the extent of the DRAM region sp resets to the top of.
	dramSize uint64
}

// New returns a State initialized per spec.md §3: PC at DRAM.Base, sp at
// the top of a DRAM region of dramSize bytes (stack grows downward), all
// other registers zero.
func New(dramSize uint64) *State {
	s := &State{dramSize: dramSize}
	s.Reset()
	return s
}

// Reset restores the architectural reset state, reseeding sp against the
// DRAM size passed to New.
func (s *State) Reset() {
	for i := range s.X {
		s.X[i] = 0
	}
	s.X[SP] = dram.Base + s.dramSize
	s.PC = dram.Base
}

// Get reads register index, which always reads as zero for x0.
func (s *State) Get(index uint64) uint64 {
	if index == Zero {
		return 0
	}
	return s.X[index&(NumRegisters-1)]
}

// Set writes register index. Writes to x0 are discarded.
func (s *State) Set(index, value uint64) {
	if index == Zero {
		return
	}
	s.X[index&(NumRegisters-1)] = value
}

// EnforceZero re-zeros x0, making the hardwired-zero invariant robust even
// if an instruction wrote to it directly through X. Called by the stepper
// after every executed instruction.
func (s *State) EnforceZero() {
	s.X[Zero] = 0
}
