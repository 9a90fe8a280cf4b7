// Package dram models the emulator's single physical memory region: a flat,
// byte-addressable array mapped at DRAM_BASE, with little-endian 8/16/32/64
// bit accessors.
package dram

import "fmt"

const (
	// Base is the architectural address of the first byte of DRAM.
	Base uint64 = 0x8000_0000
	// Size is the number of bytes backing DRAM.
	Size uint64 = 1 << 20 // 1 MiB
)

// BusFault reports an access outside the mapped DRAM region.
type BusFault struct {
	Addr uint64
	Size uint64
}

func (e *BusFault) Error() string {
	return fmt.Sprintf("bus fault: address 0x%016x (size %d) is outside DRAM [0x%016x, 0x%016x)", e.Addr, e.Size, Base, Base+Size)
}

// UnsupportedAccessWidth reports a load/store with a size outside {8,16,32,64}.
type UnsupportedAccessWidth struct {
	Bits uint64
}

func (e *UnsupportedAccessWidth) Error() string {
	return fmt.Sprintf("unsupported access width: %d bits", e.Bits)
}

// DRAM is the byte-addressable backing store for the emulator's single
// memory region.
type DRAM struct {
	mem []byte
}

// New allocates a DRAM region of the given size in bytes. Size must be
// positive; callers that want the architectural default should pass Size.
func New(size uint64) *DRAM {
	return &DRAM{mem: make([]byte, size)}
}

func widthBytes(bits uint64) (uint64, error) {
	switch bits {
	case 8, 16, 32, 64:
		return bits / 8, nil
	default:
		return 0, &UnsupportedAccessWidth{Bits: bits}
	}
}

// bounds translates an architectural address to a DRAM offset, checking that
// the full access of nbytes lies within the mapped region.
func (d *DRAM) bounds(addr, nbytes uint64) (uint64, error) {
	top := Base + uint64(len(d.mem))
	if addr < Base || addr > top-nbytes || nbytes > top-Base {
		return 0, &BusFault{Addr: addr, Size: nbytes * 8}
	}
	return addr - Base, nil
}

// Load reads a little-endian value of the given bit width (8, 16, 32, or 64)
// from addr.
func (d *DRAM) Load(addr, bits uint64) (uint64, error) {
	nbytes, err := widthBytes(bits)
	if err != nil {
		return 0, err
	}
	off, err := d.bounds(addr, nbytes)
	if err != nil {
		return 0, err
	}

	var v uint64
	for i := uint64(0); i < nbytes; i++ {
		v |= uint64(d.mem[off+i]) << (8 * i)
	}
	return v, nil
}

// Store writes the low bits-width bits of value, little-endian, at addr.
func (d *DRAM) Store(addr, bits, value uint64) error {
	nbytes, err := widthBytes(bits)
	if err != nil {
		return err
	}
	off, err := d.bounds(addr, nbytes)
	if err != nil {
		return err
	}

	for i := uint64(0); i < nbytes; i++ {
		d.mem[off+i] = byte(value >> (8 * i))
	}
	return nil
}

// LoadImage copies data into DRAM starting at Base. It returns an error if
// data does not fit.
func (d *DRAM) LoadImage(data []byte) error {
	if uint64(len(data)) > uint64(len(d.mem)) {
		return fmt.Errorf("image of %d bytes exceeds DRAM size %d", len(data), len(d.mem))
	}
	copy(d.mem, data)
	return nil
}

// Len returns the size of the DRAM region in bytes.
func (d *DRAM) Len() uint64 {
	return uint64(len(d.mem))
}
