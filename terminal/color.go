package terminal

// ColorMode indicates terminal color capability, detected once at
// startup and logged for diagnostics (conhostd's screen writer always
// emits truecolor sequences regardless of the detected mode, since the
// console host never produces anything but default-colored cells).
type ColorMode uint8

const (
	ColorMode256       ColorMode = iota // xterm-256 palette
	ColorModeTrueColor                  // 24-bit RGB
)

func (c ColorMode) String() string {
	if c == ColorModeTrueColor {
		return "truecolor"
	}
	return "256color"
}

// RGB represents a 24-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBBlack is the zero value black color.
var RGBBlack = RGB{0, 0, 0}

// Equal returns true if colors match.
func (c RGB) Equal(other RGB) bool {
	return c.R == other.R && c.G == other.G && c.B == other.B
}
