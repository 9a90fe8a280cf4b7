// Package executor implements the per-opcode semantics of the RV64I core
// plus the M/A/Zicsr/Zifencei fragments spec.md §1 names: ALU immediate and
// register forms (including width-restricted W variants), memory loads and
// stores, conditional branches, JAL/JALR, LUI/AUIPC, the CSR read-modify-
// write forms, FENCE/ECALL/EBREAK as no-ops, and the atomic memory
// operations. Dispatch is a two- or three-level switch on
// (opcode, funct3, funct7), matching spec.md §4.F's decode dispatch state
// machine.
package executor

import (
	"github.com/fmash16/riscv-emulator/bus"
	"github.com/fmash16/riscv-emulator/csr"
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/decoder"
)

// Execute performs the semantic effect of one decoded instruction on s, c,
// and b. s.PC must already reflect the post-fetch advance (pc+4); Execute
// mutates s.PC further for taken branches and jumps. It returns the
// executed mnemonic (for tracing) and an error — ErrHalt on the all-zeros
// terminator, *IllegalInstruction or *AddressMisaligned on the fatal
// conditions spec.md §7 defines, or a *dram.BusFault/*dram.UnsupportedAccessWidth
// propagated from a load or store.
func Execute(s *cpu.State, c *csr.File, b *bus.Bus, f decoder.Fields) (string, error) {
	switch f.Opcode {
	case opHalt:
		return "halt", ErrHalt
	case opLUI, opAUIPC:
		return execUpperImmediate(s, f)
	case opJAL:
		return execJAL(s, f)
	case opJALR:
		return execJALR(s, f)
	case opBranch:
		return execBranch(s, f)
	case opLoad:
		return execLoad(s, b, f)
	case opStore:
		return execStore(s, b, f)
	case opImm:
		return execALUImmediate(s, f)
	case opReg:
		return execALURegister(s, f)
	case opImm32:
		return execALUImmediateW(s, f)
	case opReg32:
		return execALURegisterW(s, f)
	case opFence:
		return "fence", nil
	case opSystem:
		return execSystem(s, c, f)
	case opAMO:
		return execAMO(s, b, f)
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
}
