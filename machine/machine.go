// Package machine wires DRAM, the bus, the CSR file, and the register file
// together and drives the fetch-decode-execute loop spec.md §4.G describes.
// It is the sole owner of the architectural state; the decoder and executor
// only borrow it for the duration of one Step call.
package machine

import (
	"errors"

	"github.com/fmash16/riscv-emulator/bus"
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/csr"
	"github.com/fmash16/riscv-emulator/decoder"
	"github.com/fmash16/riscv-emulator/dram"
	"github.com/fmash16/riscv-emulator/executor"
)

// ErrHalt is returned by Step (and Run) on a clean halt: an all-zeros
// instruction word or PC reaching 0. It is re-exported from executor so
// callers never need to import executor directly.
var ErrHalt = executor.ErrHalt

// StepResult reports what Step just did, for the trace/statistics/coverage
// observers and for the CLI's register dump.
type StepResult struct {
	PC       uint64 // address of the just-executed instruction
	Inst     uint32
	Mnemonic string
}

// Machine is the complete architectural state plus the memory it executes
// against.
type Machine struct {
	DRAM *dram.DRAM
	Bus  *bus.Bus
	CPU  *cpu.State
	CSR  *csr.File

	// Cycles counts completed steps, for -max-cycles enforcement and the
	// cycle counts the CLI, debugger and API report.
	Cycles uint64
}

// New allocates a Machine with a DRAM region of the given size.
func New(dramSize uint64) *Machine {
	d := dram.New(dramSize)
	return &Machine{
		DRAM: d,
		Bus:  bus.New(d),
		CPU:  cpu.New(dramSize),
		CSR:  csr.New(),
	}
}

// LoadImage copies a flat binary image into DRAM at dram.Base and resets
// architectural state to spec.md §3's initial values.
func (m *Machine) LoadImage(data []byte) error {
	if err := m.DRAM.LoadImage(data); err != nil {
		return err
	}
	m.CPU.Reset()
	return nil
}

// Step fetches, decodes and executes exactly one instruction. PC is
// advanced by 4 before execution so that branch/jump targets can be
// computed as target-4 per spec.md §3.
//
// Step returns ErrHalt on a clean halt (opcode 0, or PC reaching 0 after
// advance), or a fatal *executor.IllegalInstruction /
// *executor.AddressMisaligned / *dram.BusFault / *dram.UnsupportedAccessWidth
// from the fetch or the execute.
func (m *Machine) Step() (StepResult, error) {
	pc := m.CPU.PC

	instWord, err := m.Bus.Load(pc, 32)
	if err != nil {
		return StepResult{}, err
	}
	inst := uint32(instWord)

	m.CPU.PC = pc + 4
	fields := decoder.Decode(inst)

	mnemonic, err := executor.Execute(m.CPU, m.CSR, m.Bus, fields)
	m.CPU.EnforceZero()
	m.Cycles++

	result := StepResult{PC: pc, Inst: inst, Mnemonic: mnemonic}

	if err != nil {
		return result, err
	}
	if m.CPU.PC == 0 {
		return result, ErrHalt
	}
	return result, nil
}

// Run steps until Step reports ErrHalt, a fatal error, or maxCycles
// completed steps (0 means unbounded). observe, if non-nil, is called after
// every successful (non-error) step.
func (m *Machine) Run(maxCycles uint64, observe func(StepResult)) error {
	for maxCycles == 0 || m.Cycles < maxCycles {
		result, err := m.Step()
		if err != nil {
			if errors.Is(err, ErrHalt) {
				return nil
			}
			return err
		}
		if observe != nil {
			observe(result)
		}
	}
	return nil
}
