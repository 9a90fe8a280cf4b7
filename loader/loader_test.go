package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fmash16/riscv-emulator/dram"
	"github.com/fmash16/riscv-emulator/machine"
)

func writeTempImage(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFilePlacesBytesAtBase(t *testing.T) {
	m := machine.New(dram.Size)
	path := writeTempImage(t, []byte{0x93, 0x00, 0x50, 0x00}) // addi x1, x0, 5

	if err := LoadFile(m, path); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Step(); err != nil {
		t.Fatal(err)
	}
	if m.CPU.Get(1) != 5 {
		t.Errorf("x1 = %d, want 5", m.CPU.Get(1))
	}
}

func TestLoadFileTooLarge(t *testing.T) {
	m := machine.New(dram.Size)
	path := writeTempImage(t, make([]byte, dram.Size+1))

	err := LoadFile(m, path)
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InputError, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	m := machine.New(dram.Size)
	err := LoadFile(m, filepath.Join(t.TempDir(), "does-not-exist.bin"))
	var ie *InputError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InputError, got %v", err)
	}
}
