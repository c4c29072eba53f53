// Package cookedread implements the Cooked Read State Machine of spec
// §4.E: a character-at-a-time line editor with in-place cursor
// editing, destructive backspace (including word-granularity erase),
// echo, CTRL wake-up masks, and CR-terminated completion with alias
// expansion, history recording, and multi-line carry-over.
package cookedread

import (
	"errors"

	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/inputevent"
)

// Outcome is what one Feed call reports back to the Read Dispatcher.
type Outcome uint8

const (
	OutcomeContinue Outcome = iota
	OutcomeComplete
)

const (
	charBackspace = 0x08
	charDEL       = 0x7F
	charCR        = 0x0D
	charLF        = 0x0A
)

// ErrSessionComplete is returned by Feed if called again after the
// session has already completed.
var ErrSessionComplete = errors.New("cookedread: session already completed")

// Popup is an interactive overlay (history search, copy-from-char,
// ...) that intercepts input while active (spec §3 "PopupStack").
// Concrete popups are a rendering-heavy concern this core does not
// ship; the interception seam exists so one can be plugged in.
type Popup interface {
	// HandleChar processes one character. consumed means the session's
	// own editing logic should not see this character; done means the
	// popup is finished and should be popped.
	HandleChar(ch rune, mods inputevent.Modifiers) (consumed, done bool)
}

// Session is one Cooked Read Session (spec §3), owned exclusively for
// the duration of a single line-input read.
type Session struct {
	Storage     []rune
	WriteCursor int
	BytesUsed   int

	AnchorCol, AnchorRow int
	VisibleCells         int

	Echo, Processed, LineMode, InsertMode bool
	CtrlWakeupMask                        uint32

	HistoryRef     string
	ExecutableName string

	PopupStack []Popup

	// LastModifiers is set whenever a character terminates or advances
	// the read, for callers that need the modifier state at that
	// instant (spec §8 property 3).
	LastModifiers inputevent.Modifiers

	// CompletedContent, Carry, CarryMultiLine are populated once Feed
	// returns OutcomeComplete: CompletedContent is what fit into the
	// caller's destination buffer, Carry (if non-nil) is the overflow
	// spec §4.E says must be held for the next read.
	CompletedContent []rune
	Carry            []rune
	CarryMultiLine   bool

	// ModeQuery and OnLegacyInsertToggle implement the CR-completion
	// compatibility path (spec §4.E): "if the global insert toggle has
	// changed since session start, re-issue the insert-mode key to the
	// command-line-key dispatcher". Session only captured InsertMode
	// once at construction; ModeQuery lets it observe the live value
	// without importing the dispatcher.
	ModeQuery           func() bool
	OnLegacyInsertToggle func()

	screen  collab.ScreenWriter
	cursor  collab.CursorQueries
	aliases collab.AliasTable
	history collab.HistoryList
	cp      collab.Codepage

	userCap         int
	startInsertMode bool
	completed       bool
}

// Config bundles a Session's collaborators and initial mode bits.
type Config struct {
	Capacity                        int
	AnchorCol, AnchorRow            int
	Echo, Processed, LineMode, InsertMode bool
	CtrlWakeupMask                  uint32
	ExecutableName                  string
	UserDestinationCapacity         int
	Screen                          collab.ScreenWriter
	Cursor                          collab.CursorQueries
	Aliases                         collab.AliasTable
	History                         collab.HistoryList
	Codepage                        collab.Codepage
}

// NewSession allocates a scratch buffer of at least 256 units (spec
// §4.F: "scratch buffer of at least 256 bytes, rounded up to capacity
// if larger") filled with spaces, and seeds it with preFill content if
// any (a partial line carried in from the read request).
func NewSession(cfg Config, preFill []rune) *Session {
	capacity := cfg.Capacity
	if capacity < 256 {
		capacity = 256
	}
	storage := make([]rune, capacity)
	for i := range storage {
		storage[i] = ' '
	}
	n := copy(storage, preFill)

	s := &Session{
		Storage:         storage,
		WriteCursor:     n,
		BytesUsed:       n,
		AnchorCol:       cfg.AnchorCol,
		AnchorRow:       cfg.AnchorRow,
		Echo:            cfg.Echo,
		Processed:       cfg.Processed,
		LineMode:        cfg.LineMode,
		InsertMode:      cfg.InsertMode,
		CtrlWakeupMask:  cfg.CtrlWakeupMask,
		ExecutableName:  cfg.ExecutableName,
		userCap:         cfg.UserDestinationCapacity,
		startInsertMode: cfg.InsertMode,
		screen:          cfg.Screen,
		cursor:          cfg.Cursor,
		aliases:         cfg.Aliases,
		history:         cfg.History,
		cp:              cfg.Codepage,
	}
	s.VisibleCells = s.cellsUpTo(s.BytesUsed)
	return s
}

// Feed advances the state machine by one character-plus-modifier tick
// (spec §4.E). isWordErase marks that ch arrived via the extended
// "erase previous word" key rather than as a literal character; ch
// should still be passed as charBackspace-equivalent semantics apply
// regardless of its literal value in that case.
func (s *Session) Feed(ch rune, mods inputevent.Modifiers, isWordErase bool) (Outcome, error) {
	if s.completed {
		return OutcomeContinue, ErrSessionComplete
	}

	if len(s.PopupStack) > 0 {
		top := s.PopupStack[len(s.PopupStack)-1]
		consumed, done := top.HandleChar(ch, mods)
		if done {
			s.PopupStack = s.PopupStack[:len(s.PopupStack)-1]
		}
		if consumed {
			return OutcomeContinue, nil
		}
	}

	isBackspace := ch == charBackspace || isWordErase || (s.Processed && ch == charDEL)

	// 1. Buffer-full guard: two slots reserved for the CR/LF terminator.
	if s.BytesUsed >= len(s.Storage)-2 && ch != charCR && !isBackspace {
		return OutcomeContinue, nil
	}

	// 2. Early CTRL termination.
	if ch < 0x20 && (s.CtrlWakeupMask>>uint(ch))&1 == 1 {
		s.Storage[s.WriteCursor] = ch
		s.WriteCursor++
		if s.WriteCursor > s.BytesUsed {
			s.BytesUsed = s.WriteCursor
		}
		s.LastModifiers = mods
		s.finish(append([]rune(nil), s.Storage[:s.BytesUsed]...), false)
		return OutcomeComplete, nil
	}

	if ch == charCR {
		return s.feedCR(mods)
	}

	if isBackspace {
		s.feedBackspace(isWordErase)
		s.LastModifiers = mods
		return OutcomeContinue, nil
	}

	s.feedInsertOrOverwrite(ch)
	s.LastModifiers = mods
	return OutcomeContinue, nil
}

func (s *Session) atEOL() bool { return s.WriteCursor == s.BytesUsed }

// eraseOneBackward removes the character before WriteCursor, shifting
// any tail left by one. It is the same operation whether the cursor
// sits at end-of-line (no tail to shift) or mid-line.
func (s *Session) eraseOneBackward() bool {
	if s.WriteCursor == 0 {
		return false
	}
	copy(s.Storage[s.WriteCursor-1:s.BytesUsed-1], s.Storage[s.WriteCursor:s.BytesUsed])
	s.Storage[s.BytesUsed-1] = ' '
	s.WriteCursor--
	s.BytesUsed--
	return true
}

func (s *Session) feedBackspace(isWordErase bool) {
	if s.WriteCursor == 0 {
		return
	}
	midLine := !s.atEOL()
	startedOnDelim := s.cp.IsWordDelim(s.Storage[s.WriteCursor-1])

	for {
		if !s.eraseOneBackward() {
			break
		}
		if !midLine && s.Echo && s.Processed {
			s.screen.WriteChars(s.AnchorCol, s.AnchorRow, s.WriteCursor, []rune{' '}, s.columnAt(s.WriteCursor), collab.FlagDestructiveBackspace|collab.FlagEcho)
		}
		if !isWordErase || s.WriteCursor == 0 {
			break
		}
		newPrev := s.Storage[s.WriteCursor-1]
		if startedOnDelim != s.cp.IsWordDelim(newPrev) {
			break
		}
	}
	s.VisibleCells = s.cellsUpTo(s.BytesUsed)
	if midLine {
		s.repaint()
	}
}

func (s *Session) feedInsertOrOverwrite(ch rune) {
	wasEOL := s.atEOL()
	if s.InsertMode && !wasEOL {
		copy(s.Storage[s.WriteCursor+1:s.BytesUsed+1], s.Storage[s.WriteCursor:s.BytesUsed])
		s.BytesUsed++
	} else if wasEOL {
		s.BytesUsed++
	}
	s.Storage[s.WriteCursor] = ch
	s.WriteCursor++
	s.VisibleCells = s.cellsUpTo(s.BytesUsed)

	if !s.Echo {
		return
	}
	if wasEOL {
		s.screen.WriteChars(s.AnchorCol, s.AnchorRow, s.WriteCursor-1, []rune{ch}, s.columnAt(s.WriteCursor-1), collab.FlagEcho)
		s.cursor.SetPosition(s.columnAt(s.WriteCursor), s.AnchorRow)
	} else {
		s.repaint()
	}
}

// repaint clears the previously-displayed extent and redraws
// Storage[0:BytesUsed] from the anchor, per the middle-of-line branch
// of spec §4.E.
func (s *Session) repaint() {
	if s.VisibleCells > 0 {
		blanks := make([]rune, s.VisibleCells)
		for i := range blanks {
			blanks[i] = ' '
		}
		s.screen.WriteChars(s.AnchorCol, s.AnchorRow, 0, blanks, s.AnchorCol, collab.FlagEcho)
	}
	s.screen.WriteChars(s.AnchorCol, s.AnchorRow, 0, s.Storage[:s.BytesUsed], s.AnchorCol, collab.FlagEcho)
	s.cursor.SetPosition(s.columnAt(s.WriteCursor), s.AnchorRow)
}

// cellWidth implements the cell-width oracle of spec §4.E: TAB expands
// to the next 8-cell stop, ASCII control chars and East-Asian
// full-width characters occupy 2 cells, everything else occupies 1.
func (s *Session) cellWidth(ch rune, col int) int {
	switch {
	case ch == '\t':
		return 8 - (col % 8)
	case ch < 0x20:
		return 2
	case s.cp.IsFullWidth(ch):
		return 2
	default:
		return 1
	}
}

// cellsUpTo sums cell widths of Storage[0:n] starting at AnchorCol
// (spec §8 property 5).
func (s *Session) cellsUpTo(n int) int {
	col := s.AnchorCol
	total := 0
	for i := 0; i < n; i++ {
		w := s.cellWidth(s.Storage[i], col)
		total += w
		col += w
	}
	return total
}

func (s *Session) columnAt(index int) int {
	return s.AnchorCol + s.cellsUpTo(index)
}

func (s *Session) feedCR(mods inputevent.Modifiers) (Outcome, error) {
	crIndex := s.BytesUsed
	if crIndex < len(s.Storage) {
		s.Storage[crIndex] = charCR
	}
	s.BytesUsed++
	s.WriteCursor = s.BytesUsed
	s.LastModifiers = mods

	appended := []rune{charCR}
	if s.Processed && s.BytesUsed < len(s.Storage) {
		s.Storage[s.BytesUsed] = charLF
		s.BytesUsed++
		appended = append(appended, charLF)
	}
	if s.Echo {
		s.screen.WriteChars(s.AnchorCol, s.AnchorRow, crIndex, appended, s.columnAt(crIndex), collab.FlagEcho)
	}

	if s.LineMode && s.ModeQuery != nil && s.OnLegacyInsertToggle != nil {
		if s.ModeQuery() != s.startInsertMode {
			s.OnLegacyInsertToggle()
		}
	}

	line := string(s.Storage[:crIndex])
	var expansion string
	lineCount := 0
	if s.aliases != nil {
		expansion, lineCount = s.aliases.MatchAndCopy(s.ExecutableName, line, len(s.Storage))
	}

	var final []rune
	multiLine := false
	if expansion != "" {
		final = []rune(expansion)
		multiLine = lineCount > 1
	} else {
		final = append([]rune(nil), s.Storage[:s.BytesUsed]...)
	}

	if s.history != nil {
		s.history.Append(s.ExecutableName, line, collab.DedupSuppressConsecutive)
	}

	s.finish(final, multiLine)
	return OutcomeComplete, nil
}

// finish splits final content between what fits in the caller's
// destination buffer and what must carry over to the next read (spec
// §4.E: "the overflow goes into the handle's carry").
func (s *Session) finish(final []rune, multiLine bool) {
	s.completed = true
	if final == nil {
		s.CompletedContent = nil
		return
	}

	cut := len(final)
	if s.userCap < cut {
		cut = s.userCap
	}
	if multiLine {
		if idx := indexOfRune(final, charLF); idx >= 0 {
			lineEnd := idx + 1
			if lineEnd < cut {
				cut = lineEnd
			}
		}
	}

	s.CompletedContent = final[:cut]
	if cut < len(final) {
		s.Carry = final[cut:]
		s.CarryMultiLine = multiLine
	}
}

func indexOfRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}
