// Package dbcs implements the DBCS/OEM translation seam of spec §4.D:
// stateless Unicode<->OEM conversion plus the stateful lead-byte carry
// protocol that lets a two-byte OEM character span two separate reads.
package dbcs

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/mattn/go-runewidth"

	"github.com/duskframe/conhost/internal/collab"
	"github.com/duskframe/conhost/internal/inputevent"
)

// wordDelims is the default set from spec §4.E.
var wordDelims = map[rune]bool{
	' ': true, '\t': true, '\n': true, '\r': true, '\v': true, '\f': true,
	'&': true, '(': true, ')': true, '[': true, ']': true, '{': true, '}': true,
	'<': true, '>': true, '|': true, '^': true, '=': true, ';': true, '!': true,
	'\'': true, '+': true, ',': true, '`': true, '~': true, '?': true, '@': true,
	'*': true, '\\': true, '"': true, '#': true, '$': true, '%': true, '.': true,
	':': true, '/': true,
}

// Translator implements collab.Codepage against a single-byte OEM
// charmap (CP437, CP850, Windows-1252, ...). Runes that the active
// codepage cannot represent in one byte are treated as if they came
// from a genuine double-byte codepage (932/936/949/950 in the real
// console): they are split into a synthetic lead/trail byte pair
// carrying the rune's 16-bit value, so the lead-byte carry contract
// (spec §4.A/§4.D) has real two-byte characters to exercise even
// though the pack does not carry a CJK encoding dependency.
type Translator struct {
	cm *charmap.Charmap
}

// New returns a Translator for the given single-byte OEM codepage.
func New(cm *charmap.Charmap) *Translator {
	return &Translator{cm: cm}
}

// EncodeRune converts one rune to its OEM byte representation. isWide
// reports whether the character required the synthetic two-byte form;
// when true, hi is the lead byte and lo is the trail byte.
func (t *Translator) EncodeRune(r rune) (b byte, hi, lo byte, isWide bool) {
	if enc, ok := t.cm.EncodeRune(r); ok {
		return enc, 0, 0, false
	}
	return 0, byte(r >> 8), byte(r & 0xFF), true
}

// DecodePair reassembles a synthetic two-byte character back into its
// original rune.
func DecodePair(hi, lo byte) rune {
	return rune(hi)<<8 | rune(lo)
}

// UnicodeToOEM implements collab.Codepage.UnicodeToOEM: a bulk,
// stateless conversion used by the Read Dispatcher's DBCS finish step
// (spec §4.F) on an already-assembled line, not by the per-character
// carry protocol.
func (t *Translator) UnicodeToOEM(src []rune) (dst []byte, pendingLead byte, hasPendingLead bool) {
	for i, r := range src {
		b, hi, lo, isWide := t.EncodeRune(r)
		if !isWide {
			dst = append(dst, b)
			continue
		}
		if i == len(src)-1 {
			return dst, hi, true
		}
		dst = append(dst, hi, lo)
	}
	return dst, 0, false
}

// OEMToUnicode implements collab.Codepage.OEMToUnicode. It does not
// attempt to guess where a synthetic two-byte sequence starts in an
// arbitrary byte stream (that ambiguity is exactly why the real
// console needs a stateful lead-byte carry rather than decoding
// buffers independently) — it decodes single-byte OEM content only.
// Two-byte content is reassembled via DecodePair by the caller that
// knows where a pair starts (charstream's ALT-numpad decoding).
func (t *Translator) OEMToUnicode(src []byte) []rune {
	dst := make([]rune, 0, len(src))
	for _, b := range src {
		dst = append(dst, t.cm.DecodeByte(b))
	}
	return dst
}

// IsFullWidth implements collab.Codepage.IsFullWidth using the same
// East-Asian width table the cell-width oracle (Component E) needs
// for cursor accounting.
func (t *Translator) IsFullWidth(ch rune) bool {
	return runewidth.RuneWidth(ch) == 2
}

// IsWordDelim implements collab.Codepage.IsWordDelim against the
// default delimiter set of spec §4.E.
func (t *Translator) IsWordDelim(ch rune) bool {
	return wordDelims[ch]
}

var _ collab.Codepage = (*Translator)(nil)

// DeliverOEM implements the per-character half of spec §4.A's DBCS
// interaction for a raw, non-Unicode read: given the next source
// character, it either returns a single OEM byte immediately, or (for
// a character requiring the synthetic wide form) delivers the trail
// byte this call and stashes the lead byte in carry for the next call,
// matching the spec's literal "delivers the low byte this call and
// stashes the high byte...for the next call".
func DeliverOEM(carry inputevent.LeadByteCarry, t *Translator, ch rune) byte {
	b, hi, lo, isWide := t.EncodeRune(ch)
	if !isWide {
		return b
	}
	carry.SetLeadByte(hi)
	return lo
}

// DrainCarry returns and clears a pending lead byte, if any. Callers
// must drain the carry before consuming new events (spec §4.A).
func DrainCarry(carry inputevent.LeadByteCarry) (byte, bool) {
	b, pending := carry.LeadByte()
	if !pending {
		return 0, false
	}
	carry.ClearLeadByte()
	return b, true
}
