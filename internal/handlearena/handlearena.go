// Package handlearena is the arena + integer index registry described
// in spec §9's "Cyclic pointer graphs" design note: it replaces the
// source's handle -> buffer -> wait-queue -> read-context -> handle
// backreference cycle with input buffers and their side-tables living
// in one process-wide table, addressed by an opaque ID. Handles store
// the ID; wait blocks capture it and look everything up again on
// resume, so thread-dying cleanup is a linear sweep instead of a
// pointer chase.
package handlearena

import (
	"fmt"

	"github.com/duskframe/conhost/internal/inputevent"
	"github.com/duskframe/conhost/internal/waitqueue"
)

// ID addresses one input buffer's full side-table entry.
type ID int64

// HandleState is a client's view of an input buffer (spec §3 "Handle
// State"). Invariant: InputPending implies CarryBuffer is non-nil;
// ClearCarry both clears InputPending and releases CarryBuffer.
type HandleState struct {
	ClosePending   bool
	InputPending   bool
	MultiLineInput bool

	CarryBuffer    []rune
	CarryRemaining int
	CarryCursor    int
}

// SetCarry installs leftover completed-read content to be drained by
// the next read before it touches the input buffer (spec §4.F
// "carry-first").
func (h *HandleState) SetCarry(content []rune, multiLine bool) {
	h.CarryBuffer = content
	h.CarryRemaining = len(content)
	h.CarryCursor = 0
	h.InputPending = len(content) > 0
	h.MultiLineInput = multiLine
}

// ClearCarry releases the carry buffer and clears InputPending,
// maintaining the struct's invariant.
func (h *HandleState) ClearCarry() {
	h.CarryBuffer = nil
	h.CarryRemaining = 0
	h.CarryCursor = 0
	h.InputPending = false
	h.MultiLineInput = false
}

// entry is one input buffer's complete side-table: its event queue,
// its wait registry, its mode state, and its handle-level bookkeeping.
type entry struct {
	buf    *inputevent.Buffer
	waits  *waitqueue.Registry
	mode   inputevent.ModeState
	handle HandleState
}

// Arena owns every live input buffer's side-tables, keyed by ID. Like
// inputevent.Buffer and waitqueue.Registry, it carries no lock of its
// own: all access happens while the owning console holds its single
// global lock (spec §5).
type Arena struct {
	next    ID
	entries map[ID]*entry
}

// New returns an empty Arena.
func New() *Arena {
	return &Arena{entries: make(map[ID]*entry)}
}

// Create allocates a fresh input buffer and its side-tables, returning
// the ID a handle should remember.
func (a *Arena) Create() ID {
	a.next++
	id := a.next
	a.entries[id] = &entry{
		buf:   inputevent.NewBuffer(),
		waits: waitqueue.NewRegistry(),
	}
	return id
}

func (a *Arena) lookup(id ID) (*entry, error) {
	e, ok := a.entries[id]
	if !ok {
		return nil, fmt.Errorf("handlearena: unknown input buffer id %d", id)
	}
	return e, nil
}

// Buffer returns the input event buffer for id.
func (a *Arena) Buffer(id ID) (*inputevent.Buffer, error) {
	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.buf, nil
}

// Waits returns the wait registry for id.
func (a *Arena) Waits(id ID) (*waitqueue.Registry, error) {
	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	return e.waits, nil
}

// Mode returns a pointer to the mutable mode state for id.
func (a *Arena) Mode(id ID) (*inputevent.ModeState, error) {
	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	return &e.mode, nil
}

// Handle returns a pointer to the mutable handle-level bookkeeping for
// id.
func (a *Arena) Handle(id ID) (*HandleState, error) {
	e, err := a.lookup(id)
	if err != nil {
		return nil, err
	}
	return &e.handle, nil
}

// Remove tears down id's side-tables. Callers must have already
// drained its wait registry (e.g. via NotifyThreadDying or a
// HandleClosing notify pass) so no resumer is left referencing a
// vanished entry.
func (a *Arena) Remove(id ID) {
	delete(a.entries, id)
}

// Len reports the number of live input buffers, mostly useful for
// tests and diagnostics.
func (a *Arena) Len() int { return len(a.entries) }

// IDs returns every live input buffer's ID, used by thread-dying
// cleanup sweeps (spec §9: "a linear sweep").
func (a *Arena) IDs() []ID {
	ids := make([]ID, 0, len(a.entries))
	for id := range a.entries {
		ids = append(ids, id)
	}
	return ids
}
