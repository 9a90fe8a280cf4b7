package executor

import (
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/decoder"
)

// execMulDivW implements the W-variant M-extension fragment: MULW, DIVW,
// DIVUW, REMW, REMUW. Division and remainder follow the ISA-defined results
// for zero divisors and signed overflow instead of the host's undefined
// behavior (spec.md §4.F "Tie-breaks and edge cases", §9).
func execMulDivW(s *cpu.State, f decoder.Fields, rs1, rs2 uint32) (string, error) {
	switch f.Funct3 {
	case f3ADDSUB: // MULW
		s.Set(uint64(f.RD), sext32(rs1*rs2))
		return "mulw", nil

	case f3DIVW:
		a, b := int32(rs1), int32(rs2)
		var q int32
		switch {
		case b == 0:
			q = -1
		case a == -(1<<31) && b == -1:
			q = a
		default:
			q = a / b
		}
		s.Set(uint64(f.RD), sext32(uint32(q)))
		return "divw", nil

	case f3SR: // DIVUW (shares funct3 with SRLW/SRAW, disambiguated by funct7 in the caller)
		a, b := rs1, rs2
		var q uint32
		if b == 0 {
			q = ^uint32(0)
		} else {
			q = a / b
		}
		s.Set(uint64(f.RD), sext32(q))
		return "divuw", nil

	case f3REMW:
		a, b := int32(rs1), int32(rs2)
		var r int32
		switch {
		case b == 0:
			r = a
		case a == -(1<<31) && b == -1:
			r = 0
		default:
			r = a % b
		}
		s.Set(uint64(f.RD), sext32(uint32(r)))
		return "remw", nil

	case f3REMUW:
		a, b := rs1, rs2
		var r uint32
		if b == 0 {
			r = a
		} else {
			r = a % b
		}
		s.Set(uint64(f.RD), sext32(r))
		return "remuw", nil
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
}
