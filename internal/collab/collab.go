// Package collab declares the external collaborators the core
// consumes but does not own, per spec §6: screen rendering, cursor
// positioning, alias expansion, command history, and codepage
// translation. The core only ever sees these interfaces; concrete
// screen/terminal wiring lives in cmd/conhostd.
package collab

// WriteFlags controls how ScreenWriter.WriteChars renders a run of
// characters.
type WriteFlags uint8

const (
	FlagDestructiveBackspace WriteFlags = 1 << iota
	FlagKeepCursorVisible
	FlagEcho
)

// ScreenWriter is the surface the cooked-read state machine echoes
// through. The core only consumes the cell counts and scroll delta it
// reports back; it never inspects screen storage directly.
type ScreenWriter interface {
	// WriteChars renders chars starting at anchor+regionStart, given
	// the line's starting column startColumn. It returns the number of
	// characters actually consumed, the number of screen cells they
	// occupied, and how many rows the view scrolled to keep the cursor
	// visible.
	WriteChars(anchorCol, anchorRow, regionStart int, chars []rune, startColumn int, flags WriteFlags) (consumed, visibleCells, scrollDelta int)
}

// CursorQueries exposes the screen cursor position independent of any
// particular write.
type CursorQueries interface {
	CurrentPosition() (col, row int)
	SetPosition(col, row int)
	SetDoubleCursorMode(enabled bool)
}

// AliasTable resolves executable-scoped command aliases (spec §4.E CR
// completion). MatchAndCopy returns the expanded line count so a
// multi-line expansion can be recognized by its caller.
type AliasTable interface {
	MatchAndCopy(exe, input string, outCapacity int) (output string, lineCount int)
}

// DedupMode controls whether History.Append suppresses a line equal to
// the most recently recorded one.
type DedupMode uint8

const (
	DedupOff DedupMode = iota
	DedupSuppressConsecutive
)

// Direction selects which way History.Recall walks the list.
type Direction int8

const (
	DirectionBack    Direction = -1
	DirectionForward Direction = 1
)

// HistoryList is the per-executable command history.
type HistoryList interface {
	Append(exe, line string, dedup DedupMode)
	Recall(exe string, dir Direction) (line string, ok bool)
}

// Codepage is the DBCS/OEM translation and classification surface
// consumed by both the DBCS translator and the cell-width oracle.
type Codepage interface {
	UnicodeToOEM(src []rune) (dst []byte, pendingLead byte, hasPendingLead bool)
	OEMToUnicode(src []byte) (dst []rune)
	IsFullWidth(ch rune) bool
	IsWordDelim(ch rune) bool
}
