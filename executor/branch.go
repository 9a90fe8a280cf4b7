package executor

import (
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/decoder"
)

func checkAligned(pc, target uint64) error {
	if target&0x3 != 0 {
		return &AddressMisaligned{PC: pc, Target: target}
	}
	return nil
}

func execJAL(s *cpu.State, f decoder.Fields) (string, error) {
	returnAddr := s.PC // post-advance PC: instruction + 4
	target := s.PC + f.ImmJ - 4
	if err := checkAligned(returnAddr-4, target); err != nil {
		return "", err
	}
	s.Set(uint64(f.RD), returnAddr)
	s.PC = target
	return "jal", nil
}

func execJALR(s *cpu.State, f decoder.Fields) (string, error) {
	returnAddr := s.PC
	target := (s.Get(uint64(f.RS1)) + f.ImmI) &^ 1
	if err := checkAligned(returnAddr-4, target); err != nil {
		return "", err
	}
	s.Set(uint64(f.RD), returnAddr)
	s.PC = target
	return "jalr", nil
}

func execBranch(s *cpu.State, f decoder.Fields) (string, error) {
	rs1 := s.Get(uint64(f.RS1))
	rs2 := s.Get(uint64(f.RS2))

	var taken bool
	var mnemonic string
	switch f.Funct3 {
	case f3BEQ:
		taken, mnemonic = rs1 == rs2, "beq"
	case f3BNE:
		taken, mnemonic = rs1 != rs2, "bne"
	case f3BLT:
		taken, mnemonic = int64(rs1) < int64(rs2), "blt"
	case f3BGE:
		taken, mnemonic = int64(rs1) >= int64(rs2), "bge"
	case f3BLTU:
		taken, mnemonic = rs1 < rs2, "bltu"
	case f3BGEU:
		taken, mnemonic = rs1 >= rs2, "bgeu"
	default:
		return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3}
	}

	if taken {
		target := s.PC + f.ImmB - 4
		if err := checkAligned(s.PC-4, target); err != nil {
			return "", err
		}
		s.PC = target
	}
	return mnemonic, nil
}
