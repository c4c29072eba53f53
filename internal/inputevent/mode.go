package inputevent

// ModeFlags is the input-mode bitfield of spec §6.
type ModeFlags uint32

const (
	ModeLineInput ModeFlags = 1 << iota
	ModeEchoInput
	ModeProcessedInput
	ModeVirtualTerminalInput
	ModeQuickEditMode
	ModeAutoPosition
	ModeInsertMode
	ModeExtendedFlags
)

const gatedModeBits = ModeQuickEditMode | ModeAutoPosition | ModeInsertMode

// ModeState is the input-mode side-table a handle keeps: the raw bits
// exactly as last written (so GetInputMode is a verbatim echo, per
// spec §8 property 1) plus the "effective" gated bits, which only
// change when ExtendedFlags is asserted in the same call — mirroring
// the real console's quirk where ENABLE_QUICK_EDIT_MODE etc. silently
// have no effect unless ENABLE_EXTENDED_FLAGS accompanies them, even
// though GetConsoleMode keeps echoing back whatever was last set.
type ModeState struct {
	raw          ModeFlags
	quickEdit    bool
	autoPosition bool
	insertMode   bool
}

// Set stores requested verbatim and returns whether it constitutes the
// legacy-invalid-but-committed combination (ECHO_INPUT without
// LINE_INPUT).
func (s *ModeState) Set(requested ModeFlags) (legacyErr bool) {
	s.raw = requested
	if requested&ModeExtendedFlags != 0 {
		s.quickEdit = requested&ModeQuickEditMode != 0
		s.autoPosition = requested&ModeAutoPosition != 0
		s.insertMode = requested&ModeInsertMode != 0
	}
	if requested&ModeEchoInput != 0 && requested&ModeLineInput == 0 {
		legacyErr = true
	}
	return legacyErr
}

// Get returns the raw bits exactly as last set.
func (s *ModeState) Get() ModeFlags { return s.raw }

// LineInput, EchoInput, ProcessedInput, VTInput report the plain
// (ungated) bits directly from the raw value.
func (s *ModeState) LineInput() bool      { return s.raw&ModeLineInput != 0 }
func (s *ModeState) EchoInput() bool      { return s.raw&ModeEchoInput != 0 }
func (s *ModeState) ProcessedInput() bool { return s.raw&ModeProcessedInput != 0 }
func (s *ModeState) VTInput() bool        { return s.raw&ModeVirtualTerminalInput != 0 }

// QuickEditMode, AutoPosition, InsertMode report the *effective* gated
// state, which persists across calls that don't touch ExtendedFlags.
func (s *ModeState) QuickEditMode() bool  { return s.quickEdit }
func (s *ModeState) AutoPosition() bool   { return s.autoPosition }
func (s *ModeState) InsertMode() bool     { return s.insertMode }

// SetInsertMode is the convenience toggle used by legacy command-line
// key handling (spec §4.E CR-completion, "re-issue the insert-mode
// key"): it always sets ExtendedFlags so the toggle actually takes
// effect, matching the "implicitly sets EXTENDED_FLAGS" rule in §6.
func (s *ModeState) SetInsertMode(enable bool) {
	next := s.raw | ModeExtendedFlags
	if enable {
		next |= ModeInsertMode
	} else {
		next &^= ModeInsertMode
	}
	s.Set(next)
}
