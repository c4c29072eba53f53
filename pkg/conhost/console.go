// Package conhost is the public entry point for the console host core:
// it wires the six internal components behind spec §5's single global
// console lock and exposes the operations a transport layer (or, in
// this repo, cmd/conhostd) drives a session through.
package conhost

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"

	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/config"
	"github.com/duskframe/conhost/internal/dbcs"
	"github.com/duskframe/conhost/internal/dispatch"
	"github.com/duskframe/conhost/internal/handlearena"
	"github.com/duskframe/conhost/internal/inputevent"
	"github.com/duskframe/conhost/internal/waitqueue"
)

// codepages maps the config-file names accepted by internal/config to
// the golang.org/x/text charmaps the corpus already depends on.
var codepages = map[string]*charmap.Charmap{
	"cp437":       charmap.CodePage437,
	"cp850":       charmap.CodePage850,
	"windows1252": charmap.Windows1252,
}

func codepageFor(name string) (*charmap.Charmap, error) {
	cm, ok := codepages[name]
	if !ok {
		return nil, fmt.Errorf("conhost: unknown codepage %q", name)
	}
	return cm, nil
}

// Console is one console host session: one arena of input buffers, one
// dispatcher, one global lock. Every exported method acquires mu for
// its own duration except ReadConsoleInput, which releases it while a
// read is suspended (spec §5 "long-running reads that register waits
// and release the lock").
type Console struct {
	mu     sync.Mutex
	arena  *handlearena.Arena
	disp   *dispatch.Dispatcher
	cp     *dbcs.Translator
	cfg    config.Config
	log    zerolog.Logger
}

// New builds a Console over the given screen/cursor collaborators
// using cfg for codepage and history sizing.
func New(cfg config.Config, screen collab.ScreenWriter, cursor collab.CursorQueries, log zerolog.Logger) (*Console, error) {
	cm, err := codepageFor(cfg.Codepage)
	if err != nil {
		return nil, err
	}
	cp := dbcs.New(cm)
	arena := handlearena.New()
	aliases := collab.NewMemoryAliasTable()
	history := collab.NewMemoryHistory(cfg.HistoryCapacity)
	disp := dispatch.New(arena, screen, cursor, aliases, history, cp)
	disp.SetLogger(log)
	return &Console{
		arena: arena,
		disp:  disp,
		cp:    cp,
		cfg:   cfg,
		log:   log.With().Str("component", "conhost").Logger(),
	}, nil
}

// CreateInputBuffer allocates a fresh input buffer and returns its ID.
func (c *Console) CreateInputBuffer() handlearena.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.arena.Create()
	c.log.Debug().Int64("handle", int64(id)).Msg("input buffer created")
	return id
}

// SetInputMode implements spec §6's mode bitfield semantics.
// legacyErr reports the ECHO_INPUT-without-LINE_INPUT case: committed
// but reported as an error, per legacy compatibility.
func (c *Console) SetInputMode(id handlearena.ID, flags inputevent.ModeFlags) (legacyErr bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mode, err := c.arena.Mode(id)
	if err != nil {
		return false, err
	}
	return mode.Set(flags), nil
}

// GetInputMode returns the raw mode bits exactly as last set.
func (c *Console) GetInputMode(id handlearena.ID) (inputevent.ModeFlags, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	mode, err := c.arena.Mode(id)
	if err != nil {
		return 0, err
	}
	return mode.Get(), nil
}

// AppendEvents queues events on id's input buffer and wakes one
// waiter (spec §4.A append_events).
func (c *Console) AppendEvents(id handlearena.ID, events ...inputevent.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := c.arena.Buffer(id)
	if err != nil {
		return err
	}
	buf.AppendEvents(events...)
	waits, err := c.arena.Waits(id)
	if err != nil {
		return err
	}
	waits.Notify(waitqueue.ReasonNone, false)
	return nil
}

// SignalCtrlC marks id's buffer as CTRL-C-seen and alerts every
// waiter (cooked reads terminate; raw reads decline and stay
// registered, per spec §4.B resumer semantics).
func (c *Console) SignalCtrlC(id handlearena.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := c.arena.Buffer(id)
	if err != nil {
		return err
	}
	buf.SignalCtrlC()
	waits, err := c.arena.Waits(id)
	if err != nil {
		return err
	}
	waits.Notify(waitqueue.ReasonCtrlC, true)
	return nil
}

// SignalCtrlBreak alerts every waiter on id unconditionally.
func (c *Console) SignalCtrlBreak(id handlearena.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	waits, err := c.arena.Waits(id)
	if err != nil {
		return err
	}
	waits.Notify(waitqueue.ReasonCtrlBreak, true)
	return nil
}

// CloseHandle marks id closing, alerts every pending read, and tears
// down its arena entry.
func (c *Console) CloseHandle(id handlearena.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	handle, err := c.arena.Handle(id)
	if err != nil {
		return err
	}
	handle.ClosePending = true
	if buf, err := c.arena.Buffer(id); err == nil {
		buf.Close()
	}
	if waits, err := c.arena.Waits(id); err == nil {
		waits.Notify(waitqueue.ReasonHandleClosing, true)
	}
	c.arena.Remove(id)
	c.log.Debug().Int64("handle", int64(id)).Msg("input buffer closed")
	return nil
}

// ThreadDying sweeps every live input buffer's wait registry for
// blocks owned by threadID (spec §9: "a linear sweep").
func (c *Console) ThreadDying(threadID uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range c.arena.IDs() {
		if waits, err := c.arena.Waits(id); err == nil {
			waits.NotifyThreadDying(threadID)
		}
	}
}

// ReadConsoleInput drives spec §4.F end to end: it routes req through
// the dispatcher and, if the read must suspend, registers a Wait Block
// and blocks the calling goroutine on a private channel until some
// other goroutine (holding the lock briefly through AppendEvents,
// SignalCtrlC, SignalCtrlBreak, or CloseHandle) revives it. The global
// lock is held only while mutating shared state, never while this
// goroutine is parked on the channel (spec §5).
func (c *Console) ReadConsoleInput(req dispatch.Request) dispatch.Reply {
	if req.CtrlWakeupMask == 0 {
		req.CtrlWakeupMask = c.cfg.DefaultCtrlWakeupMask
	}
	c.mu.Lock()
	reply, pending := c.disp.Read(req)
	if pending == nil {
		c.mu.Unlock()
		return reply
	}

	done := make(chan dispatch.Reply, 1)
	pending.Await(func(r dispatch.Reply) { done <- r })
	waits, err := c.arena.Waits(pending.HandleID())
	if err != nil {
		c.mu.Unlock()
		return dispatch.Reply{Status: inputevent.StatusUnsuccessful}
	}
	waits.Register(pending, req.ThreadID, false)
	c.mu.Unlock()

	return <-done
}
