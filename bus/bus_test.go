package bus

import (
	"testing"

	"github.com/fmash16/riscv-emulator/dram"
)

func TestBusForwardsToDRAM(t *testing.T) {
	d := dram.New(dram.Size)
	b := New(d)

	if err := b.Store(dram.Base+4, 64, 0x1122334455667788); err != nil {
		t.Fatal(err)
	}
	got, err := b.Load(dram.Base+4, 64)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x1122334455667788 {
		t.Errorf("got 0x%x", got)
	}
}

func TestBusPropagatesFault(t *testing.T) {
	d := dram.New(dram.Size)
	b := New(d)

	if _, err := b.Load(0, 32); err == nil {
		t.Fatal("expected bus fault to propagate")
	}
}
