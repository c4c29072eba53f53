package charstream

import (
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/duskframe/conhost/internal/dbcs"
	"github.com/duskframe/conhost/internal/inputevent"
)

func keyDown(ch rune) inputevent.Event {
	return inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{Down: true, Char: ch, RepeatCount: 1}}
}

func TestGetCharSkipsPlainKeyUps(t *testing.T) {
	buf := inputevent.NewBuffer()
	buf.AppendEvents(
		inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{Down: false, Char: 'x'}},
		keyDown('y'),
	)
	e := New(buf, dbcs.New(charmap.CodePage437))
	res, status := e.GetChar(false, false, true)
	if status != inputevent.StatusSuccess || res.Char != 'y' {
		t.Fatalf("got (%q, %v), want ('y', success)", res.Char, status)
	}
}

func TestGetCharSuppressesEscAndLFOutsideVT(t *testing.T) {
	buf := inputevent.NewBuffer()
	buf.AppendEvents(keyDown(0x1B), keyDown(0x0A), keyDown('z'))
	e := New(buf, dbcs.New(charmap.CodePage437))
	res, status := e.GetChar(false, false, true)
	if status != inputevent.StatusSuccess || res.Char != 'z' {
		t.Fatalf("got (%q, %v), want ('z', success), ESC/LF should have been suppressed", res.Char, status)
	}
}

func TestGetCharPassesEscVerbatimInVTMode(t *testing.T) {
	buf := inputevent.NewBuffer()
	buf.AppendEvents(keyDown(0x1B))
	e := New(buf, dbcs.New(charmap.CodePage437))
	res, status := e.GetChar(true, false, true)
	if status != inputevent.StatusSuccess || res.Char != 0x1B {
		t.Fatalf("VT mode should pass ESC verbatim, got (%q, %v)", res.Char, status)
	}
}

func TestGetCharReturnsWaitOnEmptyBlockingBuffer(t *testing.T) {
	buf := inputevent.NewBuffer()
	e := New(buf, dbcs.New(charmap.CodePage437))
	_, status := e.GetChar(false, false, true)
	if status != inputevent.StatusWait {
		t.Fatalf("status = %v, want StatusWait", status)
	}
}

func TestGetCharEditKeyClassification(t *testing.T) {
	buf := inputevent.NewBuffer()
	buf.AppendEvents(inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{
		Down: true, VirtualKey: inputevent.VKLeft, RepeatCount: 1,
	}})
	e := New(buf, dbcs.New(charmap.CodePage437))
	res, status := e.GetChar(false, true, true)
	if status != inputevent.StatusSuccess || !res.IsEditKey || res.VirtualKey != inputevent.VKLeft {
		t.Fatalf("got %+v status %v, want edit key VKLeft", res, status)
	}
}

func TestGetCharEditKeyIgnoredWhenNotRequested(t *testing.T) {
	buf := inputevent.NewBuffer()
	buf.AppendEvents(
		inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{Down: true, VirtualKey: inputevent.VKLeft, RepeatCount: 1}},
		keyDown('n'),
	)
	e := New(buf, dbcs.New(charmap.CodePage437))
	res, status := e.GetChar(false, false, true)
	if status != inputevent.StatusSuccess || res.Char != 'n' {
		t.Fatalf("expected edit key to be skipped and 'n' returned, got %+v status %v", res, status)
	}
}

func TestGetCharLiteralNul(t *testing.T) {
	buf := inputevent.NewBuffer()
	buf.AppendEvents(inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{
		Down: true, VirtualKey: 0x32, Modifiers: inputevent.ModLeftCtrl, RepeatCount: 1,
	}})
	e := New(buf, dbcs.New(charmap.CodePage437))
	res, status := e.GetChar(false, false, true)
	if status != inputevent.StatusSuccess || res.Char != 0 {
		t.Fatalf("got %+v status %v, want literal NUL", res, status)
	}
}

func TestGetCharAltNumpadAccumulatorDeliversOnMenuKeyUp(t *testing.T) {
	buf := inputevent.NewBuffer()
	// ALT+6 ALT+5 (accumulating 65 = 'A' in CP437/ASCII) then VK_MENU key-up.
	digit := func(d rune) inputevent.Event {
		return inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{
			Down: true, Char: d, Modifiers: inputevent.ModAltNumpadAccum, RepeatCount: 1,
		}}
	}
	buf.AppendEvents(
		digit(6), digit(5),
		inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{Down: false, VirtualKey: inputevent.VKMenu}},
	)
	e := New(buf, dbcs.New(charmap.CodePage437))
	res, status := e.GetChar(false, false, true)
	if status != inputevent.StatusSuccess || res.Char != 'A' {
		t.Fatalf("got (%q, %v), want ('A', success)", res.Char, status)
	}
}
