package executor

import (
	"github.com/fmash16/riscv-emulator/bus"
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/decoder"
)

func execLoad(s *cpu.State, b *bus.Bus, f decoder.Fields) (string, error) {
	addr := s.Get(uint64(f.RS1)) + f.ImmI

	var mnemonic string
	var bits uint64
	var signed bool

	switch f.Funct3 {
	case f3LB:
		mnemonic, bits, signed = "lb", 8, true
	case f3LH:
		mnemonic, bits, signed = "lh", 16, true
	case f3LW:
		mnemonic, bits, signed = "lw", 32, true
	case f3LD:
		mnemonic, bits, signed = "ld", 64, false
	case f3LBU:
		mnemonic, bits, signed = "lbu", 8, false
	case f3LHU:
		mnemonic, bits, signed = "lhu", 16, false
	case f3LWU:
		mnemonic, bits, signed = "lwu", 32, false
	default:
		return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3}
	}

	v, err := b.Load(addr, bits)
	if err != nil {
		return "", err
	}
	if signed && bits < 64 {
		v = sextFromWidth(v, bits)
	}
	s.Set(uint64(f.RD), v)
	return mnemonic, nil
}

func execStore(s *cpu.State, b *bus.Bus, f decoder.Fields) (string, error) {
	addr := s.Get(uint64(f.RS1)) + f.ImmS
	value := s.Get(uint64(f.RS2))

	var mnemonic string
	var bits uint64

	switch f.Funct3 {
	case f3SB:
		mnemonic, bits = "sb", 8
	case f3SH:
		mnemonic, bits = "sh", 16
	case f3SW:
		mnemonic, bits = "sw", 32
	case f3SD:
		mnemonic, bits = "sd", 64
	default:
		return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3}
	}

	if err := b.Store(addr, bits, value); err != nil {
		return "", err
	}
	return mnemonic, nil
}

// sextFromWidth widens the low `bits` bits of v, interpreted as two's
// complement signed, to 64 bits.
func sextFromWidth(v, bits uint64) uint64 {
	shift := 64 - bits
	return uint64(int64(v<<shift) >> shift)
}
