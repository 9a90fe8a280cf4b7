package csr

import "testing"

func TestReadWrite(t *testing.T) {
	f := New()
	f.Write(0x300, 0xDEADBEEFCAFEBABE)
	if got := f.Read(0x300); got != 0xDEADBEEFCAFEBABE {
		t.Errorf("got 0x%x", got)
	}
}

func TestUnwrittenReadsZero(t *testing.T) {
	f := New()
	if got := f.Read(0xFFF); got != 0 {
		t.Errorf("got 0x%x, want 0", got)
	}
}

func TestIndexMasking(t *testing.T) {
	f := New()
	f.Write(0x1300, 0x42) // index wraps to 0x300 within the 12-bit space
	if got := f.Read(0x300); got != 0x42 {
		t.Errorf("got 0x%x, want 0x42", got)
	}
}
