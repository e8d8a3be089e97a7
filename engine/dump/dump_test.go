package dump

import (
	"strings"
	"testing"
)

func TestHexRendersOffsetAndAscii(t *testing.T) {
	out := Hex([]byte{0x91, 0x44, 0x98, 'h', 'i'})
	if !strings.HasPrefix(out, "000000  ") {
		t.Fatalf("expected a leading zero offset, got %q", out)
	}
	if !strings.Contains(out, "91 44 98") {
		t.Fatalf("expected hex bytes in output, got %q", out)
	}
	if !strings.Contains(out, "|.D.hi|") {
		t.Fatalf("expected ascii column with dots for non-printables, got %q", out)
	}
}

func TestHexWrapsAt16BytesPerRow(t *testing.T) {
	out := Hex(make([]byte, 20))
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected 2 rows for 20 bytes, got: %q", out)
	}
}
