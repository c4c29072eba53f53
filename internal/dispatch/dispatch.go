// Package dispatch implements the Read Dispatcher of spec §4.F: it
// looks at a handle's input mode, routes to the raw or cooked path,
// and assembles the completion payload (including DBCS translation
// for non-Unicode reads).
package dispatch

import (
	"github.com/rs/zerolog"

	"github.com/duskframe/conhost/internal/charstream"
	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/cookedread"
	"github.com/duskframe/conhost/internal/dbcs"
	"github.com/duskframe/conhost/internal/handlearena"
	"github.com/duskframe/conhost/internal/inputevent"
	"github.com/duskframe/conhost/internal/waitqueue"
)

// Request is one read call's parameters (spec §6 "Read request fields").
type Request struct {
	HandleID       handlearena.ID
	Capacity       int
	InitialBytes   int
	PreFill        []rune
	CtrlWakeupMask uint32
	ExecutableName string
	Unicode        bool
	AnchorCol      int
	AnchorRow      int
	ThreadID       uint64
}

// Reply is what a completed (or failed) read hands back to the
// transport.
type Reply struct {
	Status     inputevent.Status
	Content    []rune
	OEMContent []byte
	Modifiers  inputevent.Modifiers
}

const controlBackspace = 0x08
const controlDEL = 0x7F

// Dispatcher owns the collaborators and per-handle scratch state
// (extractors, in-flight raw/cooked reads) needed to route reads.
type Dispatcher struct {
	arena   *handlearena.Arena
	screen  collab.ScreenWriter
	cursor  collab.CursorQueries
	aliases collab.AliasTable
	history collab.HistoryList
	cp      *dbcs.Translator

	extractors map[handlearena.ID]*charstream.Extractor
	sessions   map[handlearena.ID]*cookedread.Session
	rawPending map[handlearena.ID]*rawState

	log zerolog.Logger
}

// New returns a Dispatcher wired to the given collaborators. Logging
// is silent (zerolog.Nop()) until SetLogger is called.
func New(arena *handlearena.Arena, screen collab.ScreenWriter, cursor collab.CursorQueries, aliases collab.AliasTable, history collab.HistoryList, cp *dbcs.Translator) *Dispatcher {
	return &Dispatcher{
		arena:      arena,
		screen:     screen,
		cursor:     cursor,
		aliases:    aliases,
		history:    history,
		cp:         cp,
		extractors: make(map[handlearena.ID]*charstream.Extractor),
		sessions:   make(map[handlearena.ID]*cookedread.Session),
		rawPending: make(map[handlearena.ID]*rawState),
		log:        zerolog.Nop(),
	}
}

// SetLogger installs a logger for reject/abort diagnostics.
func (d *Dispatcher) SetLogger(log zerolog.Logger) { d.log = log.With().Str("component", "dispatch").Logger() }

func (d *Dispatcher) extractorFor(id handlearena.ID) (*charstream.Extractor, error) {
	if e, ok := d.extractors[id]; ok {
		return e, nil
	}
	buf, err := d.arena.Buffer(id)
	if err != nil {
		return nil, err
	}
	e := charstream.New(buf, d.cp)
	d.extractors[id] = e
	return e, nil
}

// finishReply implements spec §4.F's "DBCS finish" step: for a
// non-Unicode read, it translates the assembled content into the
// active OEM codepage, re-injects the input buffer's carried lead
// byte if a prior finish on this handle stashed one mid-character, and
// stashes this call's own trailing lead byte (if any) for the next
// non-Unicode finish to re-inject in turn (spec §4.A: "successive
// reads must drain the carry before consuming new events").
func (d *Dispatcher) finishReply(id handlearena.ID, content []rune, unicode bool, status inputevent.Status) Reply {
	if unicode {
		return Reply{Status: status, Content: content}
	}
	bytes, pendingLead, hasPendingLead := d.cp.UnicodeToOEM(content)
	if buf, err := d.arena.Buffer(id); err == nil {
		if leadByte, pending := dbcs.DrainCarry(buf); pending {
			bytes = append([]byte{leadByte}, bytes...)
		}
		if hasPendingLead {
			buf.SetLeadByte(pendingLead)
		}
	}
	return Reply{Status: status, OEMContent: bytes}
}

// PendingRead is a suspended read context (spec §3 "Wait Block"): a
// Dispatcher method returns one whenever it must return wait, and the
// caller (pkg/conhost) registers it with the handle's wait registry
// and delivers the eventual Reply to deliver.
type PendingRead struct {
	d       *Dispatcher
	req     Request
	line    bool
	deliver func(Reply)
}

var _ waitqueue.Resumer = (*PendingRead)(nil)

// HandleID reports which handle's wait registry this read belongs in.
func (p *PendingRead) HandleID() handlearena.ID { return p.req.HandleID }

// Await installs the callback invoked with the eventual Reply once
// this pending read is consumed. The caller must set this before
// registering the PendingRead with a wait registry.
func (p *PendingRead) Await(deliver func(Reply)) { p.deliver = deliver }

// Resume implements waitqueue.Resumer per spec §4.B's resumer
// semantics table.
func (p *PendingRead) Resume(reason waitqueue.Reason, threadDying bool) bool {
	if threadDying {
		if p.line {
			delete(p.d.sessions, p.req.HandleID)
		}
		p.deliver(Reply{Status: inputevent.StatusThreadTerminating})
		return true
	}
	switch reason {
	case waitqueue.ReasonCtrlC:
		if p.line {
			p.d.log.Debug().Int64("handle", int64(p.req.HandleID)).Msg("cooked read alerted by ctrl-c")
			delete(p.d.sessions, p.req.HandleID)
			p.deliver(Reply{Status: inputevent.StatusAlerted})
			return true
		}
		return false // raw reads ignore CTRL-C and continue
	case waitqueue.ReasonCtrlBreak:
		if p.line {
			delete(p.d.sessions, p.req.HandleID)
		}
		p.deliver(Reply{Status: inputevent.StatusAlerted})
		return true
	case waitqueue.ReasonHandleClosing:
		p.d.log.Debug().Int64("handle", int64(p.req.HandleID)).Msg("read alerted by handle close")
		if p.line {
			delete(p.d.sessions, p.req.HandleID)
		}
		p.deliver(Reply{Status: inputevent.StatusAlerted})
		return true
	}

	var reply Reply
	var done bool
	if p.line {
		reply, done = p.d.continueLine(p.req)
	} else {
		reply, done = p.d.continueRaw(p.req)
	}
	if done {
		p.deliver(reply)
	}
	return done
}

// Read routes req per spec §4.F and returns either a completed Reply
// or (Reply{Status: StatusWait}, a non-nil *PendingRead) that the
// caller must register.
func (d *Dispatcher) Read(req Request) (Reply, *PendingRead) {
	if req.InitialBytes > req.Capacity {
		d.log.Warn().Int64("handle", int64(req.HandleID)).Int("initial", req.InitialBytes).Int("capacity", req.Capacity).Msg("read rejected: initial bytes exceed capacity")
		return Reply{Status: inputevent.StatusInvalidParameter}, nil
	}
	handle, err := d.arena.Handle(req.HandleID)
	if err != nil {
		d.log.Warn().Int64("handle", int64(req.HandleID)).Err(err).Msg("read rejected: unknown handle")
		return Reply{Status: inputevent.StatusUnsuccessful}, nil
	}
	if handle.InputPending {
		return d.drainCarry(handle, req), nil
	}
	mode, err := d.arena.Mode(req.HandleID)
	if err != nil {
		return Reply{Status: inputevent.StatusUnsuccessful}, nil
	}

	if mode.LineInput() {
		if _, active := d.sessions[req.HandleID]; active {
			d.log.Warn().Int64("handle", int64(req.HandleID)).Msg("read rejected: cooked read already active")
			return Reply{Status: inputevent.StatusUnsuccessful}, nil
		}
		cfg := cookedread.Config{
			Capacity:                req.Capacity,
			AnchorCol:               req.AnchorCol,
			AnchorRow:               req.AnchorRow,
			Echo:                    mode.EchoInput(),
			Processed:               mode.ProcessedInput(),
			LineMode:                true,
			InsertMode:              mode.InsertMode(),
			CtrlWakeupMask:          req.CtrlWakeupMask,
			ExecutableName:          req.ExecutableName,
			UserDestinationCapacity: req.Capacity,
			Screen:                  d.screen,
			Cursor:                  d.cursor,
			Aliases:                 d.aliases,
			History:                 d.history,
			Codepage:                d.cp,
		}
		session := cookedread.NewSession(cfg, req.PreFill)
		session.ModeQuery = mode.InsertMode
		session.OnLegacyInsertToggle = func() { mode.SetInsertMode(!mode.InsertMode()) }
		d.sessions[req.HandleID] = session
		reply, done := d.continueLine(req)
		return d.wrapOutcome(req, true, reply, done)
	}

	d.rawPending[req.HandleID] = &rawState{req: req}
	reply, done := d.continueRaw(req)
	return d.wrapOutcome(req, false, reply, done)
}

func (d *Dispatcher) wrapOutcome(req Request, line bool, reply Reply, done bool) (Reply, *PendingRead) {
	if done {
		return reply, nil
	}
	return Reply{Status: inputevent.StatusWait}, &PendingRead{d: d, req: req, line: line}
}

func (d *Dispatcher) drainCarry(handle *handlearena.HandleState, req Request) Reply {
	avail := handle.CarryBuffer[handle.CarryCursor:]
	n := len(avail)
	if n > req.Capacity {
		n = req.Capacity
	}
	chunk := avail[:n]
	handle.CarryCursor += n
	handle.CarryRemaining -= n
	if handle.CarryRemaining <= 0 {
		handle.ClearCarry()
	}
	return d.finishReply(req.HandleID, chunk, req.Unicode, inputevent.StatusSuccess)
}

// continueLine drives (or resumes) the line-mode inner loop of spec
// §4.F: pull one character at a time from the extractor, feeding the
// Cooked Read State Machine, until it completes or the extractor has
// nothing and this call must return wait again.
func (d *Dispatcher) continueLine(req Request) (Reply, bool) {
	session, ok := d.sessions[req.HandleID]
	if !ok {
		return Reply{Status: inputevent.StatusUnsuccessful}, true
	}
	extractor, err := d.extractorFor(req.HandleID)
	if err != nil {
		return Reply{Status: inputevent.StatusUnsuccessful}, true
	}
	mode, err := d.arena.Mode(req.HandleID)
	if err != nil {
		return Reply{Status: inputevent.StatusUnsuccessful}, true
	}

	for {
		res, status := extractor.GetChar(mode.VTInput(), true, true)
		if status == inputevent.StatusWait {
			return Reply{}, false
		}
		if status != inputevent.StatusSuccess {
			delete(d.sessions, req.HandleID)
			return Reply{Status: status}, true
		}
		if res.IsEditKey || res.IsPopupKey {
			// Command-line popup/edit-key routing (history recall,
			// copy-from-char, ...) is a rendering-heavy concern this
			// core does not implement; consume the key and continue.
			continue
		}

		ctrlHeld := res.Modifiers&inputevent.EitherCtrlPressed != 0
		isWordErase := ctrlHeld && (res.Char == controlDEL || res.Char == controlBackspace)

		outcome, ferr := session.Feed(res.Char, res.Modifiers, isWordErase)
		if ferr != nil {
			delete(d.sessions, req.HandleID)
			return Reply{Status: inputevent.StatusUnsuccessful}, true
		}
		if outcome == cookedread.OutcomeComplete {
			delete(d.sessions, req.HandleID)
			reply := d.finishReply(req.HandleID, session.CompletedContent, req.Unicode, inputevent.StatusSuccess)
			reply.Modifiers = session.LastModifiers
			if session.Carry != nil {
				if handle, err := d.arena.Handle(req.HandleID); err == nil {
					handle.SetCarry(session.Carry, session.CarryMultiLine)
				}
			}
			return reply, true
		}
	}
}

// rawState remembers a raw read's already-collected characters across
// a wait/resume boundary (spec §4.F: "blocking on the first only;
// never wait for the second").
type rawState struct {
	req       Request
	collected []rune
	mods      inputevent.Modifiers
	gotFirst  bool
}

// continueRaw drives (or resumes) the raw-mode loop.
func (d *Dispatcher) continueRaw(req Request) (Reply, bool) {
	st, ok := d.rawPending[req.HandleID]
	if !ok {
		st = &rawState{req: req}
		d.rawPending[req.HandleID] = st
	}
	extractor, err := d.extractorFor(req.HandleID)
	if err != nil {
		return Reply{Status: inputevent.StatusUnsuccessful}, true
	}
	mode, err := d.arena.Mode(req.HandleID)
	if err != nil {
		return Reply{Status: inputevent.StatusUnsuccessful}, true
	}

	if !st.gotFirst {
		res, status := extractor.GetChar(mode.VTInput(), false, true)
		if status == inputevent.StatusWait {
			return Reply{}, false
		}
		if status != inputevent.StatusSuccess {
			delete(d.rawPending, req.HandleID)
			return Reply{Status: status}, true
		}
		if !res.Delivered {
			return Reply{}, false
		}
		st.collected = append(st.collected, res.Char)
		st.mods = res.Modifiers
		st.gotFirst = true
	}

	for len(st.collected) < req.Capacity {
		res, status := extractor.GetChar(mode.VTInput(), false, false)
		if status != inputevent.StatusSuccess || !res.Delivered {
			break
		}
		st.collected = append(st.collected, res.Char)
		st.mods = res.Modifiers
	}

	delete(d.rawPending, req.HandleID)
	reply := d.finishReply(req.HandleID, st.collected, req.Unicode, inputevent.StatusSuccess)
	reply.Modifiers = st.mods
	return reply, true
}
