package terminal

import (
	"bufio"
	"io"
)

// outputBuffer manages double-buffered terminal output with diffing.
// It always renders truecolor SGR sequences; conhostd's screen writer
// never assigns a cell anything but the zero RGB, so the 256-color
// quantization path the original renderer needed for a full game UI
// has no observable effect here and was dropped.
type outputBuffer struct {
	front  []Cell
	width  int
	height int
	writer *bufio.Writer

	cursorX     int
	cursorY     int
	cursorValid bool

	// Style state for coalescing
	lastFg    RGB
	lastBg    RGB
	lastAttr  Attr
	lastValid bool
}

// newOutputBuffer creates a new output buffer.
func newOutputBuffer(w io.Writer) *outputBuffer {
	return &outputBuffer{
		writer: bufio.NewWriterSize(w, 131072), // 128KB buffer
	}
}

// resize updates buffer dimensions
func (o *outputBuffer) resize(width, height int) {
	size := width * height
	if cap(o.front) < size {
		o.front = make([]Cell, size)
	} else {
		o.front = o.front[:size]
	}
	o.width = width
	o.height = height

	for i := range o.front {
		o.front[i] = Cell{Rune: 0}
	}
	o.lastValid = false
	o.cursorValid = false
}

// cellEqual compares two cells for equality
func cellEqual(a, b Cell) bool {
	if a.Rune != b.Rune || a.Attrs != b.Attrs {
		return false
	}
	if a.Rune == 0 {
		return a.Bg == b.Bg
	}
	return a.Fg == b.Fg && a.Bg == b.Bg
}

// flush writes the back buffer to terminal, diffing against front buffer
func (o *outputBuffer) flush(cells []Cell, width, height int) {
	if width != o.width || height != o.height {
		o.resize(width, height)
	}

	expectedSize := width * height
	if len(cells) < expectedSize {
		return
	}

	w := o.writer

	for y := 0; y < height; y++ {
		rowStart := y * width
		x := 0

		for x < width {
			idx := rowStart + x
			newCell := cells[idx]

			if cellEqual(newCell, o.front[idx]) {
				x++
				continue
			}

			// Position cursor once for this dirty region
			if !o.cursorValid || x != o.cursorX || y != o.cursorY {
				if o.cursorValid && y == o.cursorY && x > o.cursorX {
					writeCursorForward(w, x-o.cursorX)
				} else {
					writeCursorPos(w, x, y)
				}
				o.cursorX = x
				o.cursorY = y
				o.cursorValid = true
			}

			// Write all contiguous dirty cells, emitting style only when changed
			for x < width {
				cidx := rowStart + x
				c := cells[cidx]

				if cellEqual(c, o.front[cidx]) {
					break
				}

				o.writeStyleCoalesced(w, c.Fg, c.Bg, c.Attrs)

				r := c.Rune
				if r == 0 {
					r = ' '
				}
				if r < 0x80 {
					w.WriteByte(byte(r))
				} else {
					w.WriteRune(r)
				}

				o.front[cidx] = c
				o.cursorX++
				x++
			}
		}
	}

	w.Write(csiSGR0)
	o.lastValid = false

	w.Flush()
}

// writeStyleCoalesced emits a single combined SGR sequence when style changes
func (o *outputBuffer) writeStyleCoalesced(w *bufio.Writer, fg, bg RGB, attr Attr) {
	fgChanged := !o.lastValid || fg != o.lastFg
	bgChanged := !o.lastValid || bg != o.lastBg
	styleAttr := attr & AttrStyle
	lastStyleAttr := o.lastAttr & AttrStyle
	attrChanged := !o.lastValid || styleAttr != lastStyleAttr

	if !fgChanged && !bgChanged && !attrChanged {
		return
	}

	if attrChanged {
		w.Write(csi)
		w.WriteByte('0')

		if styleAttr&AttrBold != 0 {
			w.Write([]byte(";1"))
		}
		if styleAttr&AttrDim != 0 {
			w.Write([]byte(";2"))
		}
		if styleAttr&AttrItalic != 0 {
			w.Write([]byte(";3"))
		}
		if styleAttr&AttrUnderline != 0 {
			w.Write([]byte(";4"))
		}
		if styleAttr&AttrBlink != 0 {
			w.Write([]byte(";5"))
		}
		if styleAttr&AttrReverse != 0 {
			w.Write([]byte(";7"))
		}

		o.writeFgInline(w, fg)
		o.writeBgInline(w, bg)
		w.WriteByte('m')
	} else {
		if fgChanged && bgChanged {
			w.Write(csi)
			o.writeFgInline(w, fg)
			o.writeBgInline(w, bg)
			w.WriteByte('m')
		} else if fgChanged {
			o.writeFgFull(w, fg)
		} else if bgChanged {
			o.writeBgFull(w, bg)
		}
	}

	o.lastFg = fg
	o.lastBg = bg
	o.lastAttr = attr
	o.lastValid = true
}

// writeFgInline writes fg color parameters (no CSI prefix, no 'm' suffix)
func (o *outputBuffer) writeFgInline(w *bufio.Writer, fg RGB) {
	w.Write([]byte(";38;2;"))
	writeInt(w, int(fg.R))
	w.WriteByte(';')
	writeInt(w, int(fg.G))
	w.WriteByte(';')
	writeInt(w, int(fg.B))
}

// writeBgInline writes bg color parameters (no CSI prefix, no 'm' suffix)
func (o *outputBuffer) writeBgInline(w *bufio.Writer, bg RGB) {
	w.Write([]byte(";48;2;"))
	writeInt(w, int(bg.R))
	w.WriteByte(';')
	writeInt(w, int(bg.G))
	w.WriteByte(';')
	writeInt(w, int(bg.B))
}

// writeFgFull writes complete fg color sequence
func (o *outputBuffer) writeFgFull(w *bufio.Writer, fg RGB) {
	w.Write(csiFgRGB)
	writeInt(w, int(fg.R))
	w.WriteByte(';')
	writeInt(w, int(fg.G))
	w.WriteByte(';')
	writeInt(w, int(fg.B))
	w.WriteByte('m')
}

// writeBgFull writes complete bg color sequence
func (o *outputBuffer) writeBgFull(w *bufio.Writer, bg RGB) {
	w.Write(csiBgRGB)
	writeInt(w, int(bg.R))
	w.WriteByte(';')
	writeInt(w, int(bg.G))
	w.WriteByte(';')
	writeInt(w, int(bg.B))
	w.WriteByte('m')
}

// clear writes a clear screen with specified background
func (o *outputBuffer) clear(bg RGB) {
	w := o.writer
	w.Write(csiSGR0)
	o.writeBgFull(w, bg)
	w.Write(csiClear)

	o.lastValid = false
	o.cursorValid = false
	w.Flush()

	for i := range o.front {
		o.front[i] = Cell{Rune: ' ', Bg: bg}
	}
}

// invalidateCursor marks cursor position as unknown
func (o *outputBuffer) invalidateCursor() {
	o.cursorValid = false
}
