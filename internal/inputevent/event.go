// Package inputevent defines the tagged input event record and the
// ordered, blocking-aware event buffer each console input handle owns.
package inputevent

// Kind distinguishes the categories of input event a console can queue.
// Only KindKey participates in character extraction (charstream); the
// others pass through the raw event API unchanged.
type Kind uint8

const (
	KindKey Kind = iota
	KindMouse
	KindFocusChange
	KindWindowBufferSize
	KindMenu
)

// VirtualKey mirrors the small subset of Win32 virtual-key codes the
// core needs to recognize by value (edit keys, ALT, ESC).
type VirtualKey uint16

const (
	VKPrior     VirtualKey = 0x21 // Page Up
	VKNext      VirtualKey = 0x22 // Page Down
	VKEnd       VirtualKey = 0x23
	VKHome      VirtualKey = 0x24
	VKLeft      VirtualKey = 0x25
	VKUp        VirtualKey = 0x26
	VKRight     VirtualKey = 0x27
	VKDown      VirtualKey = 0x28
	VKInsert    VirtualKey = 0x2D
	VKDelete    VirtualKey = 0x2E
	VKF1        VirtualKey = 0x70
	VKF2        VirtualKey = 0x71
	VKF3        VirtualKey = 0x72
	VKF4        VirtualKey = 0x73
	VKF5        VirtualKey = 0x74
	VKF6        VirtualKey = 0x75
	VKF7        VirtualKey = 0x76
	VKF8        VirtualKey = 0x77
	VKF9        VirtualKey = 0x78
	VKF10       VirtualKey = 0x79
	VKF11       VirtualKey = 0x7A
	VKF12       VirtualKey = 0x7B
	VKShift     VirtualKey = 0x10
	VKControl   VirtualKey = 0x11
	VKMenu      VirtualKey = 0x12 // ALT
	VKEscape    VirtualKey = 0x1B
)

// Modifiers mirrors the console's dwControlKeyState bit layout. Bit
// values match the well-known Win32 constants so a collaborator that
// already speaks that vocabulary needs no translation table.
type Modifiers uint32

const (
	ModRightAlt     Modifiers = 0x0001
	ModLeftAlt      Modifiers = 0x0002
	ModRightCtrl    Modifiers = 0x0004
	ModLeftCtrl     Modifiers = 0x0008
	ModShift        Modifiers = 0x0010
	ModNumLockOn    Modifiers = 0x0020
	ModScrollLockOn Modifiers = 0x0040
	ModCapsLockOn   Modifiers = 0x0080
	ModEnhancedKey  Modifiers = 0x0100
	// ModAltNumpadAccum is an internal bookkeeping bit (not part of any
	// wire format) set on a key-down while a caller is composing an
	// ALT+numpad character, so the eventual VK_MENU key-up knows to
	// deliver the accumulated value as a character.
	ModAltNumpadAccum Modifiers = 0x10000
)

const (
	EitherCtrlPressed Modifiers = ModLeftCtrl | ModRightCtrl
	EitherAltPressed  Modifiers = ModLeftAlt | ModRightAlt
)

// KeyEvent is a single keyboard transition.
type KeyEvent struct {
	Down       bool
	RepeatCount uint16
	VirtualKey VirtualKey
	ScanCode   uint16
	Char       rune
	Modifiers  Modifiers
}

// MouseEvent is a single mouse transition; consumed only by the raw
// event API, never by character extraction.
type MouseEvent struct {
	X, Y      int
	Buttons   uint32
	Flags     uint32
	Modifiers Modifiers
}

// FocusChangeEvent reports console window focus transitions.
type FocusChangeEvent struct {
	Focused bool
}

// WindowBufferSizeEvent reports a screen buffer resize.
type WindowBufferSizeEvent struct {
	Width, Height int
}

// MenuEvent reports a menu command selection.
type MenuEvent struct {
	CommandID uint32
}

// Event is the tagged union described in spec §3 ("Input Event").
// Exactly one payload field is meaningful, selected by Kind.
type Event struct {
	Kind   Kind
	Key    KeyEvent
	Mouse  MouseEvent
	Focus  FocusChangeEvent
	Resize WindowBufferSizeEvent
	Menu   MenuEvent
}
