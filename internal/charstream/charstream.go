// Package charstream implements the Stream Character Extractor of
// spec §4.C (the source's GetChar): it turns the raw event stream of
// an input buffer into a lazy sequence of Unicode code units, one per
// call, applying key-up filtering, VT-input policy, command-line edit
// key classification, and the literal-NUL special case.
package charstream

import (
	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/dbcs"
	"github.com/duskframe/conhost/internal/inputevent"
)

// Result is the outcome of one GetChar call. Exactly one of Char or
// VirtualKey is meaningful, depending on IsEditKey/IsPopupKey.
type Result struct {
	Char       rune
	VirtualKey inputevent.VirtualKey
	IsEditKey  bool
	IsPopupKey bool
	Modifiers  inputevent.Modifiers
	// Delivered distinguishes an actual delivery (including a literal
	// NUL character) from a non-blocking call that found no event.
	Delivered bool
}

// editKeys and popupKeys reconstruct the source's
// IsCommandLineEditingKey / IsCommandLinePopupKey tables, which spec
// §9's Open Question leaves unenumerated. This set matches the real
// console's historical behavior: the cursor-movement block plus
// Insert/Delete and the function keys bound to command-line recall,
// history-list, and copy operations in the classic line editor.
var editKeys = map[inputevent.VirtualKey]bool{
	inputevent.VKPrior: true, inputevent.VKNext: true,
	inputevent.VKEnd: true, inputevent.VKHome: true,
	inputevent.VKLeft: true, inputevent.VKUp: true,
	inputevent.VKRight: true, inputevent.VKDown: true,
	inputevent.VKInsert: true, inputevent.VKDelete: true,
	inputevent.VKF1: true, inputevent.VKF2: true, inputevent.VKF3: true,
	inputevent.VKF4: true, inputevent.VKF5: true, inputevent.VKF6: true,
	inputevent.VKF7: true, inputevent.VKF9: true,
}

var popupKeys = map[inputevent.VirtualKey]bool{
	inputevent.VKPrior: true, inputevent.VKNext: true,
	inputevent.VKEnd: true, inputevent.VKHome: true,
	inputevent.VKLeft: true, inputevent.VKUp: true,
	inputevent.VKRight: true, inputevent.VKDown: true,
	inputevent.VKDelete: true, inputevent.VKF9: true,
}

func isEditKey(vk inputevent.VirtualKey) bool  { return editKeys[vk] }
func isPopupKey(vk inputevent.VirtualKey) bool { return popupKeys[vk] }

// vkCtrlNulKey and isLiteralNulCombo reconstruct the real console's
// literal NUL combination: CTRL+2 (VK '2', 0x32) with no other modifier
// keys held (lock-key state and the enhanced-key flag are ignored)
// delivers character U+0000 verbatim rather than being swallowed as a
// zero-char control event.
const vkCtrlNulKey = inputevent.VirtualKey(0x32)

func isLiteralNulCombo(vk inputevent.VirtualKey, mods inputevent.Modifiers) bool {
	if vk != vkCtrlNulKey {
		return false
	}
	if mods&inputevent.EitherCtrlPressed == 0 {
		return false
	}
	ignorable := inputevent.ModNumLockOn | inputevent.ModScrollLockOn | inputevent.ModCapsLockOn | inputevent.ModEnhancedKey
	return mods&^(inputevent.EitherCtrlPressed|ignorable) == 0
}

// Extractor is a persistent GetChar cursor over one input buffer. It
// must outlive any individual call: a wait-return resumes the same
// lazy sequence rather than resetting it (spec §4.C), and the
// ALT-numpad accumulator must survive across the key-down events that
// build it up to the terminating VK_MENU key-up.
type Extractor struct {
	buf      *inputevent.Buffer
	cp       collab.Codepage
	accum    uint32
	accumSet bool
}

// New returns an Extractor reading from buf, translating single-byte
// ALT-numpad values through cp.
func New(buf *inputevent.Buffer, cp collab.Codepage) *Extractor {
	return &Extractor{buf: buf, cp: cp}
}

// GetChar produces the next Unicode code unit (or, if wantEditKeys and
// the key is a recognized command-line key, its virtual key code)
// under vtInput policy. It returns inputevent.StatusWait when the
// buffer is empty and blocking was requested; the caller is
// responsible for registering a Wait Block and retrying later with
// the same Extractor.
func (e *Extractor) GetChar(vtInput, wantEditKeys, blocking bool) (Result, inputevent.Status) {
	dest := make([]inputevent.Event, 1)
	for {
		n, status := e.buf.ReadEvents(dest, false, blocking, true, false)
		if status != inputevent.StatusSuccess {
			return Result{}, status
		}
		if n == 0 {
			// Non-blocking call found nothing; nothing more to try.
			return Result{}, inputevent.StatusSuccess
		}
		ev := dest[0]
		if ev.Kind != inputevent.KindKey {
			continue
		}
		key := ev.Key

		if !key.Down {
			if key.VirtualKey == inputevent.VKMenu && e.accumSet {
				ch := e.decodeNumpadAccum()
				e.accum, e.accumSet = 0, false
				return Result{Char: ch, Modifiers: key.Modifiers, Delivered: true}, inputevent.StatusSuccess
			}
			continue
		}

		if key.Modifiers&inputevent.ModAltNumpadAccum != 0 {
			e.accum = e.accum*10 + uint32(key.Char)
			e.accumSet = true
			continue
		}

		if key.Char != 0 {
			if !vtInput && (key.Char == 0x1B || key.Char == 0x0A) {
				continue
			}
			return Result{Char: key.Char, Modifiers: key.Modifiers, Delivered: true}, inputevent.StatusSuccess
		}

		if wantEditKeys && (isEditKey(key.VirtualKey) || isPopupKey(key.VirtualKey)) {
			return Result{
				VirtualKey: key.VirtualKey,
				IsEditKey:  isEditKey(key.VirtualKey),
				IsPopupKey: isPopupKey(key.VirtualKey),
				Modifiers:  key.Modifiers,
				Delivered:  true,
			}, inputevent.StatusSuccess
		}

		if isLiteralNulCombo(key.VirtualKey, key.Modifiers) {
			return Result{Char: 0, Modifiers: key.Modifiers, Delivered: true}, inputevent.StatusSuccess
		}
		// Nothing this extractor cares about (e.g. a bare modifier
		// key-down); pull the next event.
	}
}

// decodeNumpadAccum interprets the accumulated ALT-numpad digits as an
// OEM byte or byte pair, per spec §4.C step 2: a single byte is
// translated through the active codepage, a pair is reassembled into
// one character with dbcs.DecodePair.
func (e *Extractor) decodeNumpadAccum() rune {
	if e.accum > 0xFF {
		return dbcs.DecodePair(byte(e.accum>>8), byte(e.accum&0xFF))
	}
	runes := e.cp.OEMToUnicode([]byte{byte(e.accum)})
	if len(runes) == 0 {
		return 0
	}
	return runes[0]
}
