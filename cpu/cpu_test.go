package cpu

import (
	"testing"

	"github.com/fmash16/riscv-emulator/dram"
)

func TestResetState(t *testing.T) {
	s := New(dram.Size)
	if s.PC != dram.Base {
		t.Errorf("PC = 0x%x, want 0x%x", s.PC, dram.Base)
	}
	if s.Get(SP) != dram.Base+dram.Size {
		t.Errorf("sp = 0x%x, want 0x%x", s.Get(SP), dram.Base+dram.Size)
	}
	for i := uint64(1); i < NumRegisters; i++ {
		if i == SP {
			continue
		}
		if s.Get(i) != 0 {
			t.Errorf("x%d = 0x%x, want 0", i, s.Get(i))
		}
	}
}

// TestResetSeedsSPFromActualDRAMSize guards against sp being reset against
// the package-level dram.Size constant instead of the size New was called
// with: a non-default DRAM size (as the CLI's -dram-size flag and the API's
// CreateSession allow) must still place sp at the top of the real extent.
func TestResetSeedsSPFromActualDRAMSize(t *testing.T) {
	const size = 64 * 1024
	s := New(size)
	if want := dram.Base + size; s.Get(SP) != want {
		t.Errorf("sp = 0x%x, want 0x%x", s.Get(SP), want)
	}

	s.Set(SP, 0)
	s.Reset()
	if want := dram.Base + size; s.Get(SP) != want {
		t.Errorf("sp after Reset = 0x%x, want 0x%x", s.Get(SP), want)
	}
}

func TestX0HardwiredToZero(t *testing.T) {
	s := New(dram.Size)
	s.Set(Zero, 0xFFFF)
	if got := s.Get(Zero); got != 0 {
		t.Errorf("x0 = 0x%x, want 0", got)
	}
}

func TestEnforceZeroOverridesDirectWrite(t *testing.T) {
	s := New(dram.Size)
	s.X[Zero] = 0x1234 // simulate an instruction writing directly into X
	s.EnforceZero()
	if s.X[Zero] != 0 {
		t.Errorf("x0 = 0x%x after EnforceZero, want 0", s.X[Zero])
	}
}

func TestABINamesCoversAllRegisters(t *testing.T) {
	if len(ABINames) != NumRegisters {
		t.Fatalf("len(ABINames) = %d, want %d", len(ABINames), NumRegisters)
	}
	if ABINames[0] != "zero" || ABINames[2] != "sp" {
		t.Errorf("unexpected ABI names: x0=%s x2=%s", ABINames[0], ABINames[2])
	}
}
