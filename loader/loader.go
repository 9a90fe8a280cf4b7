// Package loader is the host-side collaborator spec.md §1 calls out as
// external to the core: it opens a flat binary image, reads its bytes, and
// places them at DRAM base. It performs no ELF parsing, no relocation, and
// no symbol resolution — the input is already raw machine code.
package loader

import (
	"fmt"
	"os"

	"github.com/fmash16/riscv-emulator/machine"
)

// InputError wraps a failure to open, read, or place the input image.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error: %s: %v", e.Path, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// LoadFile reads the flat binary image at path and copies it into m's DRAM
// starting at DRAM base.
func LoadFile(m *machine.Machine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &InputError{Path: path, Err: err}
	}
	if err := m.LoadImage(data); err != nil {
		return &InputError{Path: path, Err: err}
	}
	return nil
}
