package dispatch

import (
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/dbcs"
	"github.com/duskframe/conhost/internal/handlearena"
	"github.com/duskframe/conhost/internal/inputevent"
	"github.com/duskframe/conhost/internal/waitqueue"
)

type nopScreen struct{}

func (nopScreen) WriteChars(anchorCol, anchorRow, regionStart int, chars []rune, startColumn int, flags collab.WriteFlags) (int, int, int) {
	return len(chars), len(chars), 0
}

type nopCursor struct{}

func (nopCursor) CurrentPosition() (int, int)  { return 0, 0 }
func (nopCursor) SetPosition(int, int)         {}
func (nopCursor) SetDoubleCursorMode(bool)     {}

func newTestDispatcher() (*Dispatcher, *handlearena.Arena) {
	arena := handlearena.New()
	d := New(arena, nopScreen{}, nopCursor{}, collab.NewMemoryAliasTable(), collab.NewMemoryHistory(10), dbcs.New(charmap.CodePage437))
	return d, arena
}

func keyDown(ch rune) inputevent.Event {
	return inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{Down: true, Char: ch, RepeatCount: 1}}
}

// S1 — raw echo-off: both characters already queued before the call.
func TestRawReadReturnsQueuedCharactersImmediately(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()
	buf, _ := arena.Buffer(id)
	buf.AppendEvents(keyDown('h'), keyDown('i'))

	reply, pending := d.Read(Request{HandleID: id, Capacity: 4, Unicode: true})
	if pending != nil {
		t.Fatalf("expected immediate completion, got pending read")
	}
	if reply.Status != inputevent.StatusSuccess {
		t.Fatalf("status = %v, want success", reply.Status)
	}
	if string(reply.Content) != "hi" {
		t.Fatalf("Content = %q, want %q", string(reply.Content), "hi")
	}
}

func TestRawReadOnEmptyBufferReturnsPendingThenResumes(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()

	reply, pending := d.Read(Request{HandleID: id, Capacity: 4, Unicode: true})
	if reply.Status != inputevent.StatusWait || pending == nil {
		t.Fatalf("got (%v, pending=%v), want (StatusWait, non-nil pending)", reply.Status, pending)
	}

	buf, _ := arena.Buffer(id)
	buf.AppendEvents(keyDown('z'))

	var delivered Reply
	pending.deliver = func(r Reply) { delivered = r }
	if consumed := pending.Resume(waitqueue.ReasonNone, false); !consumed {
		t.Fatalf("Resume did not consume once data arrived")
	}
	if delivered.Status != inputevent.StatusSuccess || string(delivered.Content) != "z" {
		t.Fatalf("delivered = %+v, want success 'z'", delivered)
	}
}

func TestCookedLineReadCompletesOnCR(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()
	mode, _ := arena.Mode(id)
	mode.Set(inputevent.ModeLineInput | inputevent.ModeEchoInput | inputevent.ModeProcessedInput)

	buf, _ := arena.Buffer(id)
	buf.AppendEvents(keyDown('a'), keyDown('b'), keyDown('\r'))

	reply, pending := d.Read(Request{HandleID: id, Capacity: 80, Unicode: true, ExecutableName: "test.exe"})
	if pending != nil {
		t.Fatalf("expected immediate completion, got pending")
	}
	if reply.Status != inputevent.StatusSuccess {
		t.Fatalf("status = %v", reply.Status)
	}
	if string(reply.Content) != "ab\r\n" {
		t.Fatalf("Content = %q, want %q", string(reply.Content), "ab\r\n")
	}
}

func TestCarryDrainedBeforeTouchingInputBuffer(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()
	handle, _ := arena.Handle(id)
	handle.SetCarry([]rune("echo b\n"), true)

	buf, _ := arena.Buffer(id)
	buf.AppendEvents(keyDown('X')) // must not be consumed by this read

	reply, pending := d.Read(Request{HandleID: id, Capacity: 80, Unicode: true})
	if pending != nil {
		t.Fatalf("expected immediate completion from carry")
	}
	if string(reply.Content) != "echo b\n" {
		t.Fatalf("Content = %q, want carried content", string(reply.Content))
	}
	if buf.Len() != 1 {
		t.Fatalf("input buffer was touched during carry drain, len = %d", buf.Len())
	}
	if handle.InputPending {
		t.Fatalf("InputPending still set after full carry drain")
	}
}

func TestInvalidParameterWhenInitialExceedsCapacity(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()
	reply, pending := d.Read(Request{HandleID: id, Capacity: 4, InitialBytes: 8})
	if pending != nil || reply.Status != inputevent.StatusInvalidParameter {
		t.Fatalf("got (%v, %v), want StatusInvalidParameter", reply.Status, pending)
	}
}

// S5 — CTRL-C during cooked read completes alerted, zero bytes.
func TestCtrlCDuringCookedReadAlertsWithoutContent(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()
	mode, _ := arena.Mode(id)
	mode.Set(inputevent.ModeLineInput | inputevent.ModeProcessedInput)

	_, pending := d.Read(Request{HandleID: id, Capacity: 80, Unicode: true})
	if pending == nil {
		t.Fatalf("expected a pending cooked read on empty buffer")
	}
	var delivered Reply
	pending.deliver = func(r Reply) { delivered = r }
	if consumed := pending.Resume(waitqueue.ReasonCtrlC, false); !consumed {
		t.Fatalf("CTRL-C should terminate a cooked read")
	}
	if delivered.Status != inputevent.StatusAlerted || len(delivered.Content) != 0 {
		t.Fatalf("delivered = %+v, want alerted with no content", delivered)
	}
}

func TestCtrlCDuringRawReadIsIgnored(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()

	_, pending := d.Read(Request{HandleID: id, Capacity: 4, Unicode: true})
	if pending == nil {
		t.Fatalf("expected a pending raw read")
	}
	if consumed := pending.Resume(waitqueue.ReasonCtrlC, false); consumed {
		t.Fatalf("raw read should not be consumed by CTRL-C")
	}
}

// spec §4.F "DBCS finish": a non-Unicode read whose translated content
// ends mid-character must stash the lead byte on the handle's input
// buffer, and the next non-Unicode read on that handle must re-inject
// it ahead of its own bytes, per spec §4.A's "successive reads must
// drain the carry before consuming new events".
func TestNonUnicodeReadCarriesLeadByteAcrossReads(t *testing.T) {
	d, arena := newTestDispatcher()
	id := arena.Create()
	buf, _ := arena.Buffer(id)

	wide := rune(0x4E0D) // not representable in CP437, forces the synthetic wide form
	buf.AppendEvents(keyDown(wide))

	first, pending := d.Read(Request{HandleID: id, Capacity: 1, Unicode: false})
	if pending != nil {
		t.Fatalf("expected immediate completion")
	}
	if len(first.OEMContent) != 0 {
		t.Fatalf("first read OEMContent = %v, want empty (lead byte stashed for next read)", first.OEMContent)
	}
	if leadByte, pending := buf.LeadByte(); !pending || leadByte != byte(wide>>8) {
		t.Fatalf("buffer lead byte = (%d, %v), want (%d, true)", leadByte, pending, byte(wide>>8))
	}

	buf.AppendEvents(keyDown('A'))
	second, pending := d.Read(Request{HandleID: id, Capacity: 1, Unicode: false})
	if pending != nil {
		t.Fatalf("expected immediate completion")
	}
	wantA, _ := charmap.CodePage437.EncodeRune('A')
	want := []byte{byte(wide >> 8), wantA}
	if string(second.OEMContent) != string(want) {
		t.Fatalf("second read OEMContent = %v, want %v (carried lead byte then 'A')", second.OEMContent, want)
	}
	if _, pending := buf.LeadByte(); pending {
		t.Fatalf("buffer lead byte still pending after being re-injected")
	}
}
