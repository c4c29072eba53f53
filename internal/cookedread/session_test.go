package cookedread

import (
	"testing"

	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/inputevent"
)

type fakeScreen struct {
	writes [][]rune
}

func (f *fakeScreen) WriteChars(anchorCol, anchorRow, regionStart int, chars []rune, startColumn int, flags collab.WriteFlags) (int, int, int) {
	cp := append([]rune(nil), chars...)
	f.writes = append(f.writes, cp)
	return len(chars), len(chars), 0
}

type fakeCursor struct {
	col, row int
	double   bool
}

func (f *fakeCursor) CurrentPosition() (int, int)   { return f.col, f.row }
func (f *fakeCursor) SetPosition(col, row int)      { f.col, f.row = col, row }
func (f *fakeCursor) SetDoubleCursorMode(b bool)     { f.double = b }

type asciiCodepage struct{}

func (asciiCodepage) UnicodeToOEM(src []rune) ([]byte, byte, bool) { return nil, 0, false }
func (asciiCodepage) OEMToUnicode(src []byte) []rune               { return nil }
func (asciiCodepage) IsFullWidth(ch rune) bool                     { return ch > 0x2E80 }
func (asciiCodepage) IsWordDelim(ch rune) bool {
	switch ch {
	case ' ', '\t', '.', ',':
		return true
	default:
		return false
	}
}

func newTestSession(cap int, echo, processed, lineMode, insert bool, mask uint32) (*Session, *fakeScreen) {
	screen := &fakeScreen{}
	cfg := Config{
		Capacity:                256,
		Echo:                    echo,
		Processed:               processed,
		LineMode:                lineMode,
		InsertMode:              insert,
		CtrlWakeupMask:          mask,
		ExecutableName:          "test.exe",
		UserDestinationCapacity: cap,
		Screen:                  screen,
		Cursor:                  &fakeCursor{},
		Aliases:                 collab.NewMemoryAliasTable(),
		History:                 collab.NewMemoryHistory(10),
		Codepage:                asciiCodepage{},
	}
	return NewSession(cfg, nil), screen
}

// S2 — cooked line: mode=LINE|ECHO|PROCESSED, keys a b c CR.
func TestCookedLineCompletion(t *testing.T) {
	s, _ := newTestSession(80, true, true, true, false, 0)
	for _, ch := range "abc" {
		out, err := s.Feed(ch, 0, false)
		if err != nil || out != OutcomeContinue {
			t.Fatalf("Feed(%q) = (%v, %v)", ch, out, err)
		}
	}
	out, err := s.Feed(charCR, 0, false)
	if err != nil || out != OutcomeComplete {
		t.Fatalf("Feed(CR) = (%v, %v)", out, err)
	}
	want := "abc\r\n"
	if string(s.CompletedContent) != want {
		t.Fatalf("CompletedContent = %q, want %q", string(s.CompletedContent), want)
	}
}

// S3 — ctrl-mask: bell (0x07) bit set terminates immediately.
func TestCtrlWakeupMaskTerminatesImmediately(t *testing.T) {
	mask := uint32(1) << 7
	s, _ := newTestSession(80, false, true, true, false, mask)
	for _, ch := range "xy" {
		if _, err := s.Feed(ch, 0, false); err != nil {
			t.Fatalf("Feed(%q) error: %v", ch, err)
		}
	}
	out, err := s.Feed(rune(0x07), inputevent.ModLeftCtrl, false)
	if err != nil || out != OutcomeComplete {
		t.Fatalf("Feed(BEL) = (%v, %v), want complete", out, err)
	}
	if s.LastModifiers != inputevent.ModLeftCtrl {
		t.Fatalf("LastModifiers = %v, want ModLeftCtrl", s.LastModifiers)
	}
	if string(s.Storage[:s.WriteCursor]) != "xy\a" {
		t.Fatalf("Storage prefix = %q, want %q", string(s.Storage[:s.WriteCursor]), "xy\a")
	}
}

// S6 — backspace-word: f o o SPC b a r EXTKEY_ERASE_PREV_WORD.
func TestWordEraseStopsAtDelimiterBoundary(t *testing.T) {
	s, _ := newTestSession(80, true, true, true, false, 0)
	for _, ch := range "foo bar" {
		if _, err := s.Feed(ch, 0, false); err != nil {
			t.Fatalf("Feed(%q) error: %v", ch, err)
		}
	}
	if _, err := s.Feed(charBackspace, 0, true); err != nil {
		t.Fatalf("word erase error: %v", err)
	}
	if got := string(s.Storage[:s.WriteCursor]); got != "foo " {
		t.Fatalf("Storage prefix = %q, want %q", got, "foo ")
	}
	if s.WriteCursor != 4 {
		t.Fatalf("WriteCursor = %d, want 4", s.WriteCursor)
	}
}

func TestBufferFullGuardRejectsNonCRNonBS(t *testing.T) {
	s, _ := newTestSession(4, true, true, true, false, 0)
	s.Storage = make([]rune, 4)
	for i := range s.Storage {
		s.Storage[i] = ' '
	}
	s.BytesUsed = 2
	s.WriteCursor = 2
	out, err := s.Feed('x', 0, false)
	if err != nil || out != OutcomeContinue {
		t.Fatalf("Feed at guard boundary = (%v, %v)", out, err)
	}
	if s.BytesUsed != 2 {
		t.Fatalf("BytesUsed = %d, want unchanged 2 (rejected)", s.BytesUsed)
	}
}

func TestInsertModeShiftsTailRight(t *testing.T) {
	s, _ := newTestSession(80, true, true, true, true, 0)
	for _, ch := range "ac" {
		s.Feed(ch, 0, false)
	}
	s.WriteCursor = 1 // between 'a' and 'c'
	s.Feed('b', 0, false)
	if got := string(s.Storage[:s.BytesUsed]); got != "abc" {
		t.Fatalf("Storage = %q, want %q", got, "abc")
	}
}

func TestOverwriteModeReplacesInPlace(t *testing.T) {
	s, _ := newTestSession(80, true, true, true, false, 0)
	for _, ch := range "abc" {
		s.Feed(ch, 0, false)
	}
	s.WriteCursor = 1
	s.Feed('X', 0, false)
	if got := string(s.Storage[:s.BytesUsed]); got != "aXc" {
		t.Fatalf("Storage = %q, want %q", got, "aXc")
	}
}

// S4 — multi-line carry via alias expansion.
func TestMultiLineCarryFromAliasExpansion(t *testing.T) {
	aliases := collab.NewMemoryAliasTable()
	aliases.Define("test.exe", "g", "echo a\necho b\n")
	screen := &fakeScreen{}
	cfg := Config{
		Capacity:                256,
		Echo:                    false,
		Processed:               true,
		LineMode:                true,
		ExecutableName:          "test.exe",
		UserDestinationCapacity: len("echo a\n"),
		Screen:                  screen,
		Cursor:                  &fakeCursor{},
		Aliases:                 aliases,
		History:                 collab.NewMemoryHistory(10),
		Codepage:                asciiCodepage{},
	}
	s := NewSession(cfg, nil)
	s.Feed('g', 0, false)
	out, err := s.Feed(charCR, 0, false)
	if err != nil || out != OutcomeComplete {
		t.Fatalf("Feed(CR) = (%v, %v)", out, err)
	}
	if string(s.CompletedContent) != "echo a\n" {
		t.Fatalf("CompletedContent = %q, want %q", string(s.CompletedContent), "echo a\n")
	}
	if string(s.Carry) != "echo b\n" {
		t.Fatalf("Carry = %q, want %q", string(s.Carry), "echo b\n")
	}
	if !s.CarryMultiLine {
		t.Fatalf("CarryMultiLine = false, want true")
	}
}

func TestFeedAfterCompleteReturnsError(t *testing.T) {
	s, _ := newTestSession(80, false, true, true, false, 0)
	if _, err := s.Feed(charCR, 0, false); err != nil {
		t.Fatalf("initial CR error: %v", err)
	}
	if _, err := s.Feed('a', 0, false); err != ErrSessionComplete {
		t.Fatalf("err = %v, want ErrSessionComplete", err)
	}
}
