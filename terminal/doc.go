// Package terminal provides direct ANSI terminal control for conhostd's
// demo loop: raw stdin parsing into key/resize/mouse events, and a
// double-buffered, cell-diffed truecolor screen writer.
//
// It bypasses terminfo/termcap entirely, emitting ANSI sequences
// directly, and targets Linux/macOS/BSD with xterm-compatible
// terminals.
package terminal
