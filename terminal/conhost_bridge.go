package terminal

import (
	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/inputevent"
)

// ScreenBridge adapts a Terminal's cell-grid renderer into the core's
// collab.ScreenWriter and collab.CursorQueries seams (spec §6). The
// core never touches Cell, RGB, or Attr directly — it only sees cell
// counts and cursor coordinates, matching the "core does not inspect
// screen storage" contract.
type ScreenBridge struct {
	term          Terminal
	width, height int
	cells         []Cell
	curCol, curRow int
}

// NewScreenBridge wraps term with a width x height cell grid, blanked
// to spaces.
func NewScreenBridge(term Terminal, width, height int) *ScreenBridge {
	b := &ScreenBridge{term: term, width: width, height: height}
	b.cells = make([]Cell, width*height)
	for i := range b.cells {
		b.cells[i].Rune = ' '
	}
	return b
}

func (b *ScreenBridge) indexOf(col, row int) int { return row*b.width + col }

// WriteChars implements collab.ScreenWriter. It writes chars into the
// cell grid starting at (anchorCol+regionStart worth of prior cells,
// anchorRow), wrapping to the next row when a line would run past the
// grid's width, and flushes the affected rows to the terminal.
func (b *ScreenBridge) WriteChars(anchorCol, anchorRow, regionStart int, chars []rune, startColumn int, flags collab.WriteFlags) (consumed, visibleCells, scrollDelta int) {
	col, row := startColumn, anchorRow
	cells := 0
	for _, ch := range chars {
		if col >= b.width {
			col = 0
			row++
			if row >= b.height {
				scrollDelta++
				row = b.height - 1
			}
		}
		if idx := b.indexOf(col, row); idx >= 0 && idx < len(b.cells) {
			b.cells[idx].Rune = ch
		}
		col++
		cells++
	}
	b.curCol, b.curRow = col, row
	if b.term != nil {
		b.term.Flush(b.cells, b.width, b.height)
	}
	return len(chars), cells, scrollDelta
}

// CurrentPosition, SetPosition, SetDoubleCursorMode implement
// collab.CursorQueries.
func (b *ScreenBridge) CurrentPosition() (int, int) { return b.curCol, b.curRow }

func (b *ScreenBridge) SetPosition(col, row int) {
	b.curCol, b.curRow = col, row
	if b.term != nil {
		b.term.MoveCursor(col, row)
	}
}

func (b *ScreenBridge) SetDoubleCursorMode(enabled bool) {
	if b.term != nil {
		b.term.SetCursorVisible(true)
	}
}

var (
	_ collab.ScreenWriter  = (*ScreenBridge)(nil)
	_ collab.CursorQueries = (*ScreenBridge)(nil)
)

// TranslateEvent converts one ANSI-parsed terminal.Event into zero or
// one inputevent.Event (a key, mouse, or window-size record) and
// appends it to dst, in arrival order (spec §4.A "events are appended in arrival order").
// It is the seam between the teacher's escape-sequence reader and the
// core's typed input event queue.
func TranslateEvent(ev Event, dst *inputevent.Buffer) {
	switch ev.Type {
	case EventResize:
		dst.AppendEvents(inputevent.Event{
			Kind:   inputevent.KindWindowBufferSize,
			Resize: inputevent.WindowBufferSizeEvent{Width: ev.Width, Height: ev.Height},
		})
	case EventKey:
		dst.AppendEvents(keyEventFrom(ev))
	case EventMouse:
		dst.AppendEvents(inputevent.Event{
			Kind: inputevent.KindMouse,
			Mouse: inputevent.MouseEvent{
				X: ev.MouseX, Y: ev.MouseY,
				Buttons: uint32(ev.MouseBtn),
				Flags:   uint32(ev.MouseAction),
			},
		})
	}
}

func keyEventFrom(ev Event) inputevent.Event {
	mods := inputevent.Modifiers(0)
	if ev.Modifiers&ModShift != 0 {
		mods |= inputevent.ModShift
	}
	if ev.Modifiers&ModAlt != 0 {
		mods |= inputevent.ModLeftAlt
	}
	if ev.Modifiers&ModCtrl != 0 {
		mods |= inputevent.ModLeftCtrl
	}

	key := inputevent.KeyEvent{Down: true, RepeatCount: 1, Modifiers: mods}
	if ev.Key == KeyRune {
		key.Char = ev.Rune
		return inputevent.Event{Kind: inputevent.KindKey, Key: key}
	}
	if vk, ok := virtualKeyFor(ev.Key); ok {
		key.VirtualKey = vk
	}
	if ch, ok := controlCharFor(ev.Key); ok {
		key.Char = ch
	}
	return inputevent.Event{Kind: inputevent.KindKey, Key: key}
}

func virtualKeyFor(k Key) (inputevent.VirtualKey, bool) {
	switch k {
	case KeyUp:
		return inputevent.VKUp, true
	case KeyDown:
		return inputevent.VKDown, true
	case KeyLeft:
		return inputevent.VKLeft, true
	case KeyRight:
		return inputevent.VKRight, true
	case KeyHome:
		return inputevent.VKHome, true
	case KeyEnd:
		return inputevent.VKEnd, true
	case KeyPageUp:
		return inputevent.VKPrior, true
	case KeyPageDown:
		return inputevent.VKNext, true
	case KeyInsert:
		return inputevent.VKInsert, true
	case KeyDelete:
		return inputevent.VKDelete, true
	case KeyF1:
		return inputevent.VKF1, true
	case KeyF2:
		return inputevent.VKF2, true
	case KeyF3:
		return inputevent.VKF3, true
	case KeyF4:
		return inputevent.VKF4, true
	case KeyF5:
		return inputevent.VKF5, true
	case KeyF6:
		return inputevent.VKF6, true
	case KeyF7:
		return inputevent.VKF7, true
	case KeyF8:
		return inputevent.VKF8, true
	case KeyF9:
		return inputevent.VKF9, true
	case KeyF10:
		return inputevent.VKF10, true
	case KeyF11:
		return inputevent.VKF11, true
	case KeyF12:
		return inputevent.VKF12, true
	default:
		return 0, false
	}
}

// controlCharFor maps the reader's named control keys to the literal
// character GetChar is expected to see (spec §4.C only classifies by
// character/VK, it does not know about the reader's own key taxonomy).
func controlCharFor(k Key) (rune, bool) {
	switch k {
	case KeyEnter:
		return 0x0D, true
	case KeyEscape:
		return 0x1B, true
	case KeyTab:
		return 0x09, true
	case KeyBackspace:
		return 0x08, true
	case KeyCtrlSpace:
		return 0x00, true
	case KeyCtrlBackslash:
		return 0x1C, true
	case KeyCtrlBracketRight:
		return 0x1D, true
	case KeyCtrlCaret:
		return 0x1E, true
	case KeyCtrlUnderscore:
		return 0x1F, true
	}
	if k >= KeyCtrlA && k <= KeyCtrlZ {
		return rune(k-KeyCtrlA) + 1, true
	}
	return 0, false
}
