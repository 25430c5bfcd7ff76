// Package terminal switches the controlling tty between canonical and
// raw input modes around line-editor sessions.
package terminal

import (
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// State holds the termios settings in effect before EnterRaw, so the
// terminal can be restored afterwards.
type State struct {
	termios unix.Termios
}

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// EnterRaw disables canonical input, echo and signal generation on fd
// so every keystroke (including ^C and ^D) is delivered as a byte.
// The returned State must be passed to Restore on every exit path.
func EnterRaw(fd int) (*State, error) {
	tio, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, err
	}
	saved := *tio

	tio.Lflag &^= unix.ECHO | unix.ICANON | unix.ISIG
	tio.Cc[unix.VMIN] = 1
	tio.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, tio); err != nil {
		return nil, err
	}
	return &State{termios: saved}, nil
}

// Restore re-applies the settings saved by EnterRaw.
func Restore(fd int, st *State) error {
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, &st.termios)
}
