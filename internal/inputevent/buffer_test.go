package inputevent

import "testing"

func key(r rune) Event {
	return Event{Kind: KindKey, Key: KeyEvent{Down: true, Char: r, RepeatCount: 1}}
}

func TestReadEventsFIFOOrder(t *testing.T) {
	b := NewBuffer()
	b.AppendEvents(key('h'), key('i'))

	dest := make([]Event, 4)
	n, status := b.ReadEvents(dest, false, true, true, false)
	if status != StatusSuccess {
		t.Fatalf("status = %v, want success", status)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if dest[0].Key.Char != 'h' || dest[1].Key.Char != 'i' {
		t.Fatalf("got %q %q, want h i", dest[0].Key.Char, dest[1].Key.Char)
	}
}

func TestReadEventsBlockingEmptyReturnsWait(t *testing.T) {
	b := NewBuffer()
	dest := make([]Event, 1)
	n, status := b.ReadEvents(dest, false, true, true, false)
	if status != StatusWait || n != 0 {
		t.Fatalf("got (%d, %v), want (0, StatusWait)", n, status)
	}
}

func TestReadEventsNonBlockingEmptyReturnsSuccessZero(t *testing.T) {
	b := NewBuffer()
	dest := make([]Event, 1)
	n, status := b.ReadEvents(dest, false, false, true, false)
	if status != StatusSuccess || n != 0 {
		t.Fatalf("got (%d, %v), want (0, StatusSuccess)", n, status)
	}
}

func TestReadEventsClosedHandleAlerted(t *testing.T) {
	b := NewBuffer()
	b.AppendEvents(key('a'))
	dest := make([]Event, 1)
	n, status := b.ReadEvents(dest, false, true, true, true)
	if status != StatusAlerted || n != 0 {
		t.Fatalf("got (%d, %v), want (0, StatusAlerted)", n, status)
	}
}

func TestReadEventsCtrlCSeenAlertsStreamModeOnly(t *testing.T) {
	b := NewBuffer()
	b.AppendEvents(key('a'))
	b.SignalCtrlC()

	dest := make([]Event, 1)
	if _, status := b.ReadEvents(dest, false, true, true, false); status != StatusAlerted {
		t.Fatalf("stream-mode read with CTRL-C seen: status = %v, want StatusAlerted", status)
	}
	if n, status := b.ReadEvents(dest, false, true, false, false); status != StatusSuccess || n != 1 {
		t.Fatalf("raw (non-stream) read with CTRL-C seen: got (%d, %v), want (1, StatusSuccess)", n, status)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	b := NewBuffer()
	b.AppendEvents(key('x'), key('y'))
	dest := make([]Event, 2)

	n, _ := b.ReadEvents(dest, true, false, false, false)
	if n != 2 {
		t.Fatalf("peek n = %d, want 2", n)
	}
	if b.Len() != 2 {
		t.Fatalf("peek mutated queue: len = %d, want 2", b.Len())
	}
}

func TestKeyDownRepeatExpandsInStreamMode(t *testing.T) {
	b := NewBuffer()
	ev := key('a')
	ev.Key.RepeatCount = 3
	b.AppendEvents(ev)

	dest := make([]Event, 1)
	for i := 0; i < 3; i++ {
		n, status := b.ReadEvents(dest, false, true, true, false)
		if status != StatusSuccess || n != 1 || dest[0].Key.Char != 'a' {
			t.Fatalf("repeat %d: got (%d, %v, %q)", i, n, status, dest[0].Key.Char)
		}
	}
	if b.Len() != 0 {
		t.Fatalf("queue not drained after repeat expansion: len = %d", b.Len())
	}
	dest2 := make([]Event, 1)
	if n, status := b.ReadEvents(dest2, false, false, true, false); n != 0 || status != StatusSuccess {
		t.Fatalf("after drain: got (%d, %v), want (0, StatusSuccess)", n, status)
	}
}

func TestFlushResetsQueueAndLeadByte(t *testing.T) {
	b := NewBuffer()
	b.AppendEvents(key('a'))
	b.SetLeadByte(0x81)
	b.Flush()
	if b.Len() != 0 {
		t.Fatalf("Len() = %d after flush, want 0", b.Len())
	}
	if _, pending := b.LeadByte(); pending {
		t.Fatalf("lead byte still pending after flush")
	}
}
