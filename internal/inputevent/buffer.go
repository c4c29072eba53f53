package inputevent

// Status is the outcome of a buffer or read operation, surfaced up to
// the transport per spec §6.
type Status uint8

const (
	StatusSuccess Status = iota
	StatusWait
	StatusAlerted
	StatusBufferOverflow
	StatusInvalidParameter
	StatusNoMemory
	StatusThreadTerminating
	StatusUnsuccessful
)

// LeadByteCarry is the seam the DBCS translator (internal/dbcs) reads
// and writes across call boundaries; Buffer just stores the slot.
type LeadByteCarry interface {
	LeadByte() (b byte, pending bool)
	SetLeadByte(b byte)
	ClearLeadByte()
}

// Buffer is the Input Event Buffer of spec §4.A. It holds no lock of
// its own: every mutating method assumes the caller already holds the
// owning console's single global lock (spec §5), so Buffer methods
// read like plain sequential code even though the system around them
// is concurrent.
type Buffer struct {
	events []Event

	// repeatRemaining tracks how many more stream-mode deliveries the
	// front key event owes (spec §4.A: "key-down repeats expand to
	// multiple character events"). Reset whenever the front event
	// changes.
	repeatRemaining uint16

	leadByte    byte
	leadPending bool

	closed        bool
	ctrlCSeen     bool
	activeReads   int
}

// NewBuffer returns an empty Input Event Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// LeadByte, SetLeadByte, ClearLeadByte implement LeadByteCarry.
func (b *Buffer) LeadByte() (byte, bool) { return b.leadByte, b.leadPending }
func (b *Buffer) SetLeadByte(v byte)     { b.leadByte, b.leadPending = v, true }
func (b *Buffer) ClearLeadByte()         { b.leadByte, b.leadPending = 0, false }

// Len reports the number of distinct queued events (not counting
// repeat expansion of the front event).
func (b *Buffer) Len() int { return len(b.events) }

// Close marks the buffer's owning handle as closing; subsequent reads
// observe StatusAlerted per spec §4.A failure semantics.
func (b *Buffer) Close()          { b.closed = true }
func (b *Buffer) Closed() bool    { return b.closed }

// SignalCtrlC records that a CTRL-C was seen; stream-mode reads
// surface it as StatusAlerted (spec §4.A), raw reads ignore it (that
// distinction is enforced by the caller, per §5 cancellation policy).
func (b *Buffer) SignalCtrlC()       { b.ctrlCSeen = true }
func (b *Buffer) ClearCtrlCSeen()    { b.ctrlCSeen = false }
func (b *Buffer) CtrlCSeen() bool    { return b.ctrlCSeen }

// AppendEvents appends events in arrival order (spec §4.A
// append_events). It does not itself decide whom to wake — the caller
// (the console context, which also owns the Wait Registry) does that,
// since waking requires knowing which registry serves this buffer.
func (b *Buffer) AppendEvents(events ...Event) {
	b.events = append(b.events, events...)
}

// Flush discards all queued events and resets the DBCS lead carry
// (spec §4.A flush).
func (b *Buffer) Flush() {
	b.events = b.events[:0]
	b.repeatRemaining = 0
	b.ClearLeadByte()
}

// ReadEvents implements spec §4.A read_events. peek performs a
// non-destructive read; streamMode additionally expands a key-down
// event carrying RepeatCount>1 into that many single deliveries
// (RepeatCount==0 is treated as a single delivery, matching a normal
// non-autorepeat keystroke). It never blocks itself: when the buffer
// is empty and blocking is requested, it returns (0, StatusWait) and
// leaves registering a Wait Block to the caller.
func (b *Buffer) ReadEvents(dest []Event, peek, blocking, streamMode, handleClosed bool) (int, Status) {
	if handleClosed || b.closed {
		return 0, StatusAlerted
	}
	if streamMode && b.ctrlCSeen {
		return 0, StatusAlerted
	}
	if len(dest) == 0 {
		return 0, StatusSuccess
	}

	if peek {
		// Non-destructive: never mutates the queue or repeat bookkeeping.
		n := copy(dest, b.events)
		if n == 0 && blocking {
			return 0, StatusWait
		}
		return n, StatusSuccess
	}

	if len(b.events) == 0 {
		if blocking {
			return 0, StatusWait
		}
		return 0, StatusSuccess
	}

	n := 0
	for n < len(dest) && len(b.events) > 0 {
		front := b.events[0]
		dest[n] = front
		n++

		if streamMode && front.Kind == KindKey && front.Key.Down && front.Key.RepeatCount > 1 {
			if b.repeatRemaining == 0 {
				b.repeatRemaining = front.Key.RepeatCount
			}
			b.repeatRemaining--
			if b.repeatRemaining > 0 {
				// Front event stays queued; the next slot (or the
				// next call) re-delivers it until the count drains.
				continue
			}
		}
		b.events = b.events[1:]
		b.repeatRemaining = 0
	}
	return n, StatusSuccess
}
