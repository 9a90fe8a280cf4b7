package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fmash16/riscv-emulator/cpu"
	"github.com/fmash16/riscv-emulator/machine"
)

// abiIndex maps an ABI or "xN" register name to its index, case-insensitively.
func abiIndex(name string) (int, bool) {
	name = strings.ToLower(name)
	for i, n := range cpu.ABINames {
		if n == name {
			return i, true
		}
	}
	if strings.HasPrefix(name, "x") {
		if n, err := strconv.Atoi(name[1:]); err == nil && n >= 0 && n < cpu.NumRegisters {
			return n, true
		}
	}
	return 0, false
}

// ParseValue parses a decimal or 0x-prefixed hexadecimal literal.
func ParseValue(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value: %s", s)
	}
	return uint64(v), nil
}

// ResolveTarget returns the current value of a register name ("x1", "ra"),
// "pc", or a CSR reference ("csr0x300" / "csr768"). It does not resolve bare
// memory addresses; use *0xADDR forms via the debugger's print/set commands.
func ResolveTarget(target string, m *machine.Machine) (uint64, error) {
	target = strings.TrimSpace(target)
	lower := strings.ToLower(target)

	if lower == "pc" {
		return m.CPU.PC, nil
	}
	if idx, ok := abiIndex(target); ok {
		return m.CPU.Get(uint64(idx)), nil
	}
	if strings.HasPrefix(lower, "csr") {
		n, err := ParseValue(target[3:])
		if err != nil {
			return 0, fmt.Errorf("invalid CSR reference: %s", target)
		}
		return m.CSR.Read(n), nil
	}

	return 0, fmt.Errorf("unknown target: %s", target)
}

// EvaluateCondition evaluates a simple "<target> <op> <value>" condition,
// e.g. "x1 == 5" or "pc != 0x80000010". An empty condition is always true.
// There is no general expression grammar: one comparison, no boolean
// connectives, no nested arithmetic.
func EvaluateCondition(cond string, m *machine.Machine) (bool, error) {
	cond = strings.TrimSpace(cond)
	if cond == "" {
		return true, nil
	}

	fields := strings.Fields(cond)
	if len(fields) != 3 {
		return false, fmt.Errorf("invalid condition %q: expected '<target> <op> <value>'", cond)
	}

	lhs, err := ResolveTarget(fields[0], m)
	if err != nil {
		return false, err
	}
	rhs, err := ParseValue(fields[2])
	if err != nil {
		return false, err
	}

	switch fields[1] {
	case "==":
		return lhs == rhs, nil
	case "!=":
		return lhs != rhs, nil
	case "<":
		return lhs < rhs, nil
	case ">":
		return lhs > rhs, nil
	case "<=":
		return lhs <= rhs, nil
	case ">=":
		return lhs >= rhs, nil
	default:
		return false, fmt.Errorf("unsupported operator: %s", fields[1])
	}
}
