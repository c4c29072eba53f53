package dbcs

import (
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/duskframe/conhost/internal/inputevent"
)

func TestRoundTripSingleByteCodepage(t *testing.T) {
	tr := New(charmap.CodePage437)
	for _, r := range []rune{'A', 'z', '0', '$'} {
		dst, _, wide := tr.UnicodeToOEM([]rune{r})
		if wide {
			t.Fatalf("%q unexpectedly required wide form", r)
		}
		got := tr.OEMToUnicode(dst)
		if len(got) != 1 || got[0] != r {
			t.Fatalf("round trip of %q = %q, want %q", r, got, r)
		}
	}
}

func TestSyntheticWideCharacterStashesLeadByte(t *testing.T) {
	tr := New(charmap.CodePage437)
	carry := inputevent.NewBuffer()

	wide := rune(0x4E2D) // outside any single-byte OEM codepage
	trail := DeliverOEM(carry, tr, wide)

	lead, pending := carry.LeadByte()
	if !pending {
		t.Fatalf("expected a lead byte to be stashed for a wide character")
	}
	if got := DecodePair(lead, trail); got != wide {
		t.Fatalf("DecodePair(%x, %x) = %q, want %q", lead, trail, got, wide)
	}
}

func TestDrainCarryClearsAfterRead(t *testing.T) {
	carry := inputevent.NewBuffer()
	carry.SetLeadByte(0x81)

	b, ok := DrainCarry(carry)
	if !ok || b != 0x81 {
		t.Fatalf("DrainCarry = (%x, %v), want (0x81, true)", b, ok)
	}
	if _, pending := carry.LeadByte(); pending {
		t.Fatalf("carry still pending after drain")
	}
	if _, ok := DrainCarry(carry); ok {
		t.Fatalf("second drain reported a pending byte")
	}
}

func TestIsFullWidthAndWordDelim(t *testing.T) {
	tr := New(charmap.CodePage437)
	if !tr.IsFullWidth('中') {
		t.Fatalf("expected CJK character to be full width")
	}
	if tr.IsFullWidth('a') {
		t.Fatalf("ASCII letter should not be full width")
	}
	if !tr.IsWordDelim(' ') || !tr.IsWordDelim('.') {
		t.Fatalf("expected space and '.' to be word delimiters")
	}
	if tr.IsWordDelim('a') {
		t.Fatalf("letter should not be a word delimiter")
	}
}
