package executor

import (
	"github.com/fmash16/riscv-emulator/bus"
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/decoder"
)

// execAMO implements the read-modify-write atomics. Because the emulator is
// single-hart and non-concurrent, atomicity is trivially satisfied: aq and
// rl (the low two bits of funct7) are ignored. LR/SC reduce to a plain load
// and a store that always succeeds, writing 0 to rd on SC (spec.md §4.F).
func execAMO(s *cpu.State, b *bus.Bus, f decoder.Fields) (string, error) {
	var bits uint64
	var widthName string
	switch f.Funct3 {
	case f3AMOW:
		bits, widthName = 32, "w"
	case f3AMOD:
		bits, widthName = 64, "d"
	default:
		return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3}
	}

	addr := s.Get(uint64(f.RS1))
	op := f.Funct7 >> 2

	switch op {
	case amoLR:
		v, err := b.Load(addr, bits)
		if err != nil {
			return "", err
		}
		if bits == 32 {
			v = sext32(uint32(v))
		}
		s.Set(uint64(f.RD), v)
		return "lr." + widthName, nil

	case amoSC:
		value := s.Get(uint64(f.RS2))
		if err := b.Store(addr, bits, value); err != nil {
			return "", err
		}
		s.Set(uint64(f.RD), 0)
		return "sc." + widthName, nil
	}

	pre, err := b.Load(addr, bits)
	if err != nil {
		return "", err
	}
	rs2 := s.Get(uint64(f.RS2))

	var result uint64
	var mnemonic string
	switch op {
	case amoAdd:
		result, mnemonic = pre+rs2, "amoadd."+widthName
	case amoSwap:
		result, mnemonic = rs2, "amoswap."+widthName
	case amoXor:
		result, mnemonic = pre^rs2, "amoxor."+widthName
	case amoOr:
		result, mnemonic = pre|rs2, "amoor."+widthName
	case amoAnd:
		result, mnemonic = pre&rs2, "amoand."+widthName
	case amoMin, amoMax, amoMinU, amoMaxU:
		// Signed/unsigned min/max AMOs are omitted by the source this
		// emulator is derived from (spec.md §4.F); fail loudly rather than
		// silently no-op.
		return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
	default:
		return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
	}

	if err := b.Store(addr, bits, result); err != nil {
		return "", err
	}
	if bits == 32 {
		pre = sext32(uint32(pre))
	}
	s.Set(uint64(f.RD), pre)
	return mnemonic, nil
}
