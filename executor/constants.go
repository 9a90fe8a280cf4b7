package executor

// Opcodes, named after original_source/includes/opcodes.h and spec.md §3/§4.F.
const (
	opLUI    = 0x37
	opAUIPC  = 0x17
	opJAL    = 0x6f
	opJALR   = 0x67
	opBranch = 0x63
	opLoad   = 0x03
	opStore  = 0x23
	opImm    = 0x13
	opReg    = 0x33
	opImm32  = 0x1b
	opReg32  = 0x3b
	opFence  = 0x0f
	opSystem = 0x73
	opAMO    = 0x2f
	opHalt   = 0x00
)

// funct3 values shared across opcode families.
const (
	f3BEQ  = 0x0
	f3BNE  = 0x1
	f3BLT  = 0x4
	f3BGE  = 0x5
	f3BLTU = 0x6
	f3BGEU = 0x7

	f3LB  = 0x0
	f3LH  = 0x1
	f3LW  = 0x2
	f3LD  = 0x3
	f3LBU = 0x4
	f3LHU = 0x5
	f3LWU = 0x6

	f3SB = 0x0
	f3SH = 0x1
	f3SW = 0x2
	f3SD = 0x3

	f3ADDI  = 0x0
	f3SLLI  = 0x1
	f3SLTI  = 0x2
	f3SLTIU = 0x3
	f3XORI  = 0x4
	f3SRI   = 0x5
	f3ORI   = 0x6
	f3ANDI  = 0x7

	f3ADDSUB = 0x0
	f3SLL    = 0x1
	f3SLT    = 0x2
	f3SLTU   = 0x3
	f3XOR    = 0x4
	f3SR     = 0x5
	f3OR     = 0x6
	f3AND    = 0x7

	f3DIVW = 0x4
	f3REMW = 0x6
	f3REMUW = 0x7

	f3CSRRW  = 0x1
	f3CSRRS  = 0x2
	f3CSRRC  = 0x3
	f3CSRRWI = 0x5
	f3CSRRSI = 0x6
	f3CSRRCI = 0x7
	f3PRIV   = 0x0 // ECALL/EBREAK

	f3AMOW = 0x2
	f3AMOD = 0x3
)

// funct7 values distinguishing ADD/SUB, SRL/SRA and the W-variant
// multiply/divide family sharing a funct3 with shift/add forms.
const (
	f7Base  = 0x00
	f7Alt   = 0x20
	f7MulDiv = 0x01
)

// AMO funct5 (funct7 >> 2) operation selectors.
const (
	amoAdd  = 0x00
	amoSwap = 0x01
	amoLR   = 0x02
	amoSC   = 0x03
	amoXor  = 0x04
	amoOr   = 0x08
	amoAnd  = 0x0c
	amoMin  = 0x10
	amoMax  = 0x14
	amoMinU = 0x18
	amoMaxU = 0x1c
)

// csrImmMask extracts the CSR immediate forms' operand: their rs1 field is
// the zero-extended 5-bit immediate.
const csrImmMask = 0x1f
