package executor

import (
	"github.com/fmash16/riscv-emulator/csr"
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/decoder"
)

// execSystem dispatches the SYSTEM opcode: ECALL/EBREAK (no-ops, no trap
// delivery in this core's scope) and the six CSR read-modify-write forms.
//
// spec.md §9 flags the source's unconditional write on CSRRS/CSRRC(I) with a
// zero source as a bug: per the ISA, a zero source must skip the write
// entirely so read-only/side-effectful CSRs are not disturbed. This
// implementation performs that skip.
func execSystem(s *cpu.State, c *csr.File, f decoder.Fields) (string, error) {
	if f.Funct3 == f3PRIV {
		if f.ImmI == 1 {
			return "ebreak", nil
		}
		return "ecall", nil
	}

	old := c.Read(uint64(f.CSRIndex))

	switch f.Funct3 {
	case f3CSRRW:
		c.Write(uint64(f.CSRIndex), s.Get(uint64(f.RS1)))
		s.Set(uint64(f.RD), old)
		return "csrrw", nil
	case f3CSRRS:
		src := s.Get(uint64(f.RS1))
		if f.RS1 != 0 {
			c.Write(uint64(f.CSRIndex), old|src)
		}
		s.Set(uint64(f.RD), old)
		return "csrrs", nil
	case f3CSRRC:
		src := s.Get(uint64(f.RS1))
		if f.RS1 != 0 {
			c.Write(uint64(f.CSRIndex), old&^src)
		}
		s.Set(uint64(f.RD), old)
		return "csrrc", nil
	case f3CSRRWI:
		c.Write(uint64(f.CSRIndex), uint64(f.RS1)&csrImmMask)
		s.Set(uint64(f.RD), old)
		return "csrrwi", nil
	case f3CSRRSI:
		imm := uint64(f.RS1) & csrImmMask
		if imm != 0 {
			c.Write(uint64(f.CSRIndex), old|imm)
		}
		s.Set(uint64(f.RD), old)
		return "csrrsi", nil
	case f3CSRRCI:
		imm := uint64(f.RS1) & csrImmMask
		if imm != 0 {
			c.Write(uint64(f.CSRIndex), old&^imm)
		}
		s.Set(uint64(f.RD), old)
		return "csrrci", nil
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3}
}
