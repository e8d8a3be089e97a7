package frame

import "testing"

func TestAppendAndBytes(t *testing.T) {
	a := New(8)
	for _, b := range []byte{1, 2, 3} {
		a.Append(b)
	}
	if got := a.Bytes(); string(got) != string([]byte{1, 2, 3}) {
		t.Fatalf("Bytes() = %v, want [1 2 3]", got)
	}
	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}
}

func TestResetWithSeedsFirstByte(t *testing.T) {
	a := New(4)
	a.Append(0x90)
	a.ResetWith(0x98)
	if a.Len() != 1 || a.At(0) != 0x98 {
		t.Fatalf("ResetWith did not seed the new buffer correctly: len=%d at0=%#x", a.Len(), a.At(0))
	}
}

func TestEndsWith(t *testing.T) {
	a := New(16)
	for _, b := range []byte(";end\r") {
		a.Append(b)
	}
	if !a.EndsWith([]byte{0x3B, 0x65, 0x6E, 0x64, 0x0D}) {
		t.Fatal("EndsWith should match the literal ;end\\r marker")
	}
	if a.EndsWith([]byte{'x', 'y'}) {
		t.Fatal("EndsWith matched a non-suffix")
	}
}

func TestLastIs(t *testing.T) {
	a := New(4)
	if a.LastIs(0x98) {
		t.Fatal("empty accumulator should not match LastIs")
	}
	a.Append(0x98)
	if !a.LastIs(0x98) {
		t.Fatal("LastIs should match the only appended byte")
	}
}

func TestAppendOverflowPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected Append to panic on overflow")
		}
	}()
	a := New(1)
	a.Append(1)
	a.Append(2)
}
