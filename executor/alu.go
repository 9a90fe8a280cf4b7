package executor

import (
	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/decoder"
)

// sext32 sign-extends a 32-bit result to 64 bits, as required for every
// W-variant instruction's destination value.
func sext32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}

func execUpperImmediate(s *cpu.State, f decoder.Fields) (string, error) {
	switch f.Opcode {
	case opLUI:
		s.Set(uint64(f.RD), f.ImmU)
		return "lui", nil
	case opAUIPC:
		// s.PC has already been advanced by 4 by the stepper.
		s.Set(uint64(f.RD), s.PC+f.ImmU-4)
		return "auipc", nil
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode}
}

func execALUImmediate(s *cpu.State, f decoder.Fields) (string, error) {
	rs1 := s.Get(uint64(f.RS1))

	switch f.Funct3 {
	case f3ADDI:
		s.Set(uint64(f.RD), rs1+f.ImmI)
		return "addi", nil
	case f3SLTI:
		v := uint64(0)
		if int64(rs1) < int64(f.ImmI) {
			v = 1
		}
		s.Set(uint64(f.RD), v)
		return "slti", nil
	case f3SLTIU:
		v := uint64(0)
		if rs1 < f.ImmI {
			v = 1
		}
		s.Set(uint64(f.RD), v)
		return "sltiu", nil
	case f3XORI:
		s.Set(uint64(f.RD), rs1^f.ImmI)
		return "xori", nil
	case f3ORI:
		s.Set(uint64(f.RD), rs1|f.ImmI)
		return "ori", nil
	case f3ANDI:
		s.Set(uint64(f.RD), rs1&f.ImmI)
		return "andi", nil
	case f3SLLI:
		s.Set(uint64(f.RD), rs1<<f.Shamt6)
		return "slli", nil
	case f3SRI:
		// inst[25] is shamt[5] in the 64-bit forms, not part of funct7.
		switch f.Funct7 &^ 1 {
		case f7Base:
			s.Set(uint64(f.RD), rs1>>f.Shamt6)
			return "srli", nil
		case f7Alt:
			s.Set(uint64(f.RD), uint64(int64(rs1)>>f.Shamt6))
			return "srai", nil
		}
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
}

func execALURegister(s *cpu.State, f decoder.Fields) (string, error) {
	rs1 := s.Get(uint64(f.RS1))
	rs2 := s.Get(uint64(f.RS2))
	shamt := rs2 & 0x3f

	switch f.Funct3 {
	case f3ADDSUB:
		switch f.Funct7 {
		case f7Base:
			s.Set(uint64(f.RD), rs1+rs2)
			return "add", nil
		case f7Alt:
			s.Set(uint64(f.RD), rs1-rs2)
			return "sub", nil
		}
	case f3SLL:
		if f.Funct7 != f7Base {
			break
		}
		s.Set(uint64(f.RD), rs1<<shamt)
		return "sll", nil
	case f3SLT:
		if f.Funct7 != f7Base {
			break
		}
		v := uint64(0)
		if int64(rs1) < int64(rs2) {
			v = 1
		}
		s.Set(uint64(f.RD), v)
		return "slt", nil
	case f3SLTU:
		if f.Funct7 != f7Base {
			break
		}
		v := uint64(0)
		if rs1 < rs2 {
			v = 1
		}
		s.Set(uint64(f.RD), v)
		return "sltu", nil
	case f3XOR:
		if f.Funct7 != f7Base {
			break
		}
		s.Set(uint64(f.RD), rs1^rs2)
		return "xor", nil
	case f3SR:
		switch f.Funct7 {
		case f7Base:
			s.Set(uint64(f.RD), rs1>>shamt)
			return "srl", nil
		case f7Alt:
			s.Set(uint64(f.RD), uint64(int64(rs1)>>shamt))
			return "sra", nil
		}
	case f3OR:
		if f.Funct7 != f7Base {
			break
		}
		s.Set(uint64(f.RD), rs1|rs2)
		return "or", nil
	case f3AND:
		if f.Funct7 != f7Base {
			break
		}
		s.Set(uint64(f.RD), rs1&rs2)
		return "and", nil
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
}

func execALUImmediateW(s *cpu.State, f decoder.Fields) (string, error) {
	rs1 := uint32(s.Get(uint64(f.RS1)))

	switch f.Funct3 {
	case f3ADDI:
		s.Set(uint64(f.RD), sext32(rs1+uint32(f.ImmI)))
		return "addiw", nil
	case f3SLLI:
		if f.Shamt6&0x20 != 0 {
			return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3}
		}
		s.Set(uint64(f.RD), sext32(rs1<<f.Shamt5))
		return "slliw", nil
	case f3SRI:
		if f.Shamt6&0x20 != 0 {
			return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3}
		}
		switch f.Funct7 {
		case f7Base:
			s.Set(uint64(f.RD), sext32(rs1>>f.Shamt5))
			return "srliw", nil
		case f7Alt:
			s.Set(uint64(f.RD), sext32(uint32(int32(rs1)>>f.Shamt5)))
			return "sraiw", nil
		}
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
}

func execALURegisterW(s *cpu.State, f decoder.Fields) (string, error) {
	rs1 := uint32(s.Get(uint64(f.RS1)))
	rs2 := uint32(s.Get(uint64(f.RS2)))
	shamt := rs2 & 0x1f

	switch f.Funct3 {
	case f3ADDSUB:
		switch f.Funct7 {
		case f7Base:
			s.Set(uint64(f.RD), sext32(rs1+rs2))
			return "addw", nil
		case f7Alt:
			s.Set(uint64(f.RD), sext32(rs1-rs2))
			return "subw", nil
		case f7MulDiv:
			return execMulDivW(s, f, rs1, rs2)
		}
	case f3SLL:
		if f.Funct7 != f7Base {
			break
		}
		s.Set(uint64(f.RD), sext32(rs1<<shamt))
		return "sllw", nil
	case f3SR:
		switch f.Funct7 {
		case f7Base:
			s.Set(uint64(f.RD), sext32(rs1>>shamt))
			return "srlw", nil
		case f7Alt:
			s.Set(uint64(f.RD), sext32(uint32(int32(rs1)>>shamt)))
			return "sraw", nil
		case f7MulDiv:
			return execMulDivW(s, f, rs1, rs2)
		}
	case f3DIVW, f3REMW, f3REMUW:
		if f.Funct7 != f7MulDiv {
			break
		}
		return execMulDivW(s, f, rs1, rs2)
	}
	return "", &IllegalInstruction{PC: s.PC, Opcode: f.Opcode, Funct3: f.Funct3, Funct7: f.Funct7}
}
