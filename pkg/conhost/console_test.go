package conhost

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/config"
	"github.com/duskframe/conhost/internal/dispatch"
	"github.com/duskframe/conhost/internal/inputevent"
)

type fakeScreen struct{}

func (fakeScreen) WriteChars(anchorCol, anchorRow, regionStart int, chars []rune, startColumn int, flags collab.WriteFlags) (int, int, int) {
	return len(chars), len(chars), 0
}

type fakeCursor struct{}

func (fakeCursor) CurrentPosition() (int, int) { return 0, 0 }
func (fakeCursor) SetPosition(int, int)        {}
func (fakeCursor) SetDoubleCursorMode(bool)    {}

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	c, err := New(config.Default(), fakeScreen{}, fakeCursor{}, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func keyDown(ch rune) inputevent.Event {
	return inputevent.Event{Kind: inputevent.KindKey, Key: inputevent.KeyEvent{Down: true, Char: ch, RepeatCount: 1}}
}

// S1 — a raw read against already-queued input completes without
// suspending.
func TestReadConsoleInputRawImmediate(t *testing.T) {
	c := newTestConsole(t)
	id := c.CreateInputBuffer()
	if err := c.AppendEvents(id, keyDown('h'), keyDown('i')); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	reply := c.ReadConsoleInput(dispatch.Request{HandleID: id, Capacity: 4, Unicode: true})
	if reply.Status != inputevent.StatusSuccess || string(reply.Content) != "hi" {
		t.Fatalf("reply = %+v, want success 'hi'", reply)
	}
}

// A raw read against an empty buffer suspends until AppendEvents wakes it.
func TestReadConsoleInputSuspendsThenWakes(t *testing.T) {
	c := newTestConsole(t)
	id := c.CreateInputBuffer()

	result := make(chan dispatch.Reply, 1)
	go func() {
		result <- c.ReadConsoleInput(dispatch.Request{HandleID: id, Capacity: 4, Unicode: true})
	}()

	// Give the reader goroutine a chance to register its wait before we
	// deliver the event it's waiting on.
	time.Sleep(20 * time.Millisecond)
	if err := c.AppendEvents(id, keyDown('z')); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}

	select {
	case reply := <-result:
		if reply.Status != inputevent.StatusSuccess || string(reply.Content) != "z" {
			t.Fatalf("reply = %+v, want success 'z'", reply)
		}
	case <-time.After(time.Second):
		t.Fatalf("ReadConsoleInput never returned")
	}
}

// S5 — CTRL-C during a suspended cooked read completes it alerted.
func TestSignalCtrlCAlertsSuspendedCookedRead(t *testing.T) {
	c := newTestConsole(t)
	id := c.CreateInputBuffer()
	if _, err := c.SetInputMode(id, inputevent.ModeLineInput|inputevent.ModeProcessedInput); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}

	result := make(chan dispatch.Reply, 1)
	go func() {
		result <- c.ReadConsoleInput(dispatch.Request{HandleID: id, Capacity: 80, Unicode: true})
	}()

	time.Sleep(20 * time.Millisecond)
	if err := c.SignalCtrlC(id); err != nil {
		t.Fatalf("SignalCtrlC: %v", err)
	}

	select {
	case reply := <-result:
		if reply.Status != inputevent.StatusAlerted || len(reply.Content) != 0 {
			t.Fatalf("reply = %+v, want alerted with no content", reply)
		}
	case <-time.After(time.Second):
		t.Fatalf("ReadConsoleInput never returned")
	}
}

func TestCloseHandleAlertsSuspendedRead(t *testing.T) {
	c := newTestConsole(t)
	id := c.CreateInputBuffer()

	result := make(chan dispatch.Reply, 1)
	go func() {
		result <- c.ReadConsoleInput(dispatch.Request{HandleID: id, Capacity: 4, Unicode: true})
	}()

	time.Sleep(20 * time.Millisecond)
	if err := c.CloseHandle(id); err != nil {
		t.Fatalf("CloseHandle: %v", err)
	}

	select {
	case reply := <-result:
		if reply.Status != inputevent.StatusAlerted {
			t.Fatalf("reply = %+v, want alerted", reply)
		}
	case <-time.After(time.Second):
		t.Fatalf("ReadConsoleInput never returned")
	}
}

func TestSetAndGetInputModeRoundTrip(t *testing.T) {
	c := newTestConsole(t)
	id := c.CreateInputBuffer()
	if _, err := c.SetInputMode(id, inputevent.ModeLineInput|inputevent.ModeEchoInput); err != nil {
		t.Fatalf("SetInputMode: %v", err)
	}
	got, err := c.GetInputMode(id)
	if err != nil {
		t.Fatalf("GetInputMode: %v", err)
	}
	if got != inputevent.ModeLineInput|inputevent.ModeEchoInput {
		t.Fatalf("GetInputMode = %v, want the bits just set", got)
	}
}

func TestThreadDyingRemovesOwnedWaitsOnly(t *testing.T) {
	c := newTestConsole(t)
	id := c.CreateInputBuffer()

	otherDone := make(chan dispatch.Reply, 1)
	mineDone := make(chan dispatch.Reply, 1)
	go func() {
		otherDone <- c.ReadConsoleInput(dispatch.Request{HandleID: id, Capacity: 4, Unicode: true, ThreadID: 2})
	}()
	go func() {
		mineDone <- c.ReadConsoleInput(dispatch.Request{HandleID: id, Capacity: 4, Unicode: true, ThreadID: 1})
	}()
	time.Sleep(20 * time.Millisecond)

	c.ThreadDying(1)

	select {
	case reply := <-mineDone:
		if reply.Status != inputevent.StatusThreadTerminating {
			t.Fatalf("reply = %+v, want StatusThreadTerminating", reply)
		}
	case <-time.After(time.Second):
		t.Fatalf("thread-owned read was not revived")
	}

	select {
	case reply := <-otherDone:
		t.Fatalf("unrelated thread's read was revived early: %+v", reply)
	default:
	}

	if err := c.AppendEvents(id, keyDown('q')); err != nil {
		t.Fatalf("AppendEvents: %v", err)
	}
	select {
	case reply := <-otherDone:
		if reply.Status != inputevent.StatusSuccess || string(reply.Content) != "q" {
			t.Fatalf("reply = %+v, want success 'q'", reply)
		}
	case <-time.After(time.Second):
		t.Fatalf("unrelated thread's read never completed")
	}
}
