// Package input implements the interactive line editor: raw-mode
// keystroke handling, cursor movement, history navigation and tab
// completion.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/apriljarosz/mish/internal/history"
	"github.com/apriljarosz/mish/internal/terminal"
)

// Control-key exits from ReadLine. The top loop dispatches on them:
// ErrInterrupted discards the partial line, ErrEndOfTransmission ends
// the shell.
var (
	ErrInterrupted       = errors.New("interrupted")
	ErrEndOfTransmission = errors.New("end of transmission")
)

// LineEditor reads edited lines from a terminal. Input and output are
// injected so the key state machine can be driven from tests; raw mode
// is used only when the input actually is a terminal.
type LineEditor struct {
	in         *bufio.Reader
	out        io.Writer
	fd         int
	prompt     string
	history    *history.History
	completion *CompletionEngine
}

// NewLineEditor creates a line editor reading from in and rendering to
// out.
func NewLineEditor(in io.Reader, out io.Writer, prompt string, hist *history.History, ce *CompletionEngine) *LineEditor {
	fd := -1
	if f, ok := in.(interface{ Fd() uintptr }); ok {
		if terminal.IsTerminal(int(f.Fd())) {
			fd = int(f.Fd())
		}
	}
	return &LineEditor{
		in:         bufio.NewReader(in),
		out:        out,
		fd:         fd,
		prompt:     prompt,
		history:    hist,
		completion: ce,
	}
}

// ReadLine reads one line. Raw mode is entered for the duration of the
// call and restored on every exit path.
func (le *LineEditor) ReadLine() (string, error) {
	if le.fd >= 0 {
		st, err := terminal.EnterRaw(le.fd)
		if err != nil {
			// Terminal refused raw mode; degrade to canonical reads.
			return le.readSimple()
		}
		defer terminal.Restore(le.fd, st)
	}
	return le.edit()
}

// promptState is the state of one input line: the buffer, the cursor
// column, the history cursor (equal to history length while editing a
// fresh line) plus the line saved when navigating into history, and
// the tab flag for the double-tab listing.
type promptState struct {
	le      *LineEditor
	line    []byte
	cursor  int
	histPos int
	saved   string
	lastTab bool
}

func (le *LineEditor) edit() (string, error) {
	ps := &promptState{le: le, histPos: le.history.Size()}
	le.write(le.prompt)

	for {
		c, err := le.in.ReadByte()
		if err != nil {
			le.write("\n")
			if errors.Is(err, io.EOF) {
				return "", ErrEndOfTransmission
			}
			return "", err
		}

		prevTab := ps.lastTab
		ps.lastTab = c == '\t'

		switch {
		case c == '\n':
			le.write("\n")
			return string(ps.line), nil

		case c == '\t':
			ps.completeTab(prevTab)

		case c == 0x03: // ^C
			le.write("\n")
			return "", ErrInterrupted

		case c == 0x04: // ^D
			le.write("\n")
			return "", ErrEndOfTransmission

		case c == 0x0c: // ^L
			le.write("\x1b[2J\x1b[H")
			ps.redraw()

		case c == 0x1b:
			if err := ps.escapeSequence(); err != nil {
				if errors.Is(err, io.EOF) {
					return "", ErrEndOfTransmission
				}
				return "", err
			}

		case c == 0x7f: // backspace
			if ps.cursor > 0 {
				ps.line = append(ps.line[:ps.cursor-1], ps.line[ps.cursor:]...)
				ps.cursor--
				ps.redraw()
			}

		case c < 0x20:
			// Unhandled control byte.

		default:
			ps.line = append(ps.line[:ps.cursor], append([]byte{c}, ps.line[ps.cursor:]...)...)
			ps.cursor++
			ps.redraw()
		}
	}
}

// escapeSequence handles ESC [ <final>: arrow keys for cursor movement
// and history navigation. Unknown finals are ignored.
func (ps *promptState) escapeSequence() error {
	b, err := ps.le.in.ReadByte()
	if err != nil {
		return err
	}
	if b != '[' {
		return nil
	}
	final, err := ps.le.in.ReadByte()
	if err != nil {
		return err
	}

	hist := ps.le.history
	switch final {
	case 'A':
		if ps.histPos > 0 {
			if ps.histPos == hist.Size() {
				ps.saved = string(ps.line)
			}
			ps.histPos--
			ps.line = []byte(hist.Get(ps.histPos))
			ps.cursor = len(ps.line)
			ps.redraw()
		}
	case 'B':
		if ps.histPos < hist.Size() {
			ps.histPos++
			if ps.histPos == hist.Size() {
				ps.line = []byte(ps.saved)
				ps.saved = ""
			} else {
				ps.line = []byte(hist.Get(ps.histPos))
			}
			ps.cursor = len(ps.line)
			ps.redraw()
		}
	case 'C':
		if ps.cursor < len(ps.line) {
			ps.cursor++
			ps.redraw()
		}
	case 'D':
		if ps.cursor > 0 {
			ps.cursor--
			ps.redraw()
		}
	}
	return nil
}

// completeTab runs the completion engine over the buffer. One
// candidate completes in place with a trailing space; several extend
// to the longest common prefix first and list on the second tab; none
// rings the bell.
func (ps *promptState) completeTab(doubleTab bool) {
	cands := ps.le.completion.Complete(string(ps.line))
	switch {
	case len(cands) == 0:
		ps.le.write("\a")

	case len(cands) == 1:
		ps.line = []byte(cands[0] + " ")
		ps.cursor = len(ps.line)
		ps.redraw()

	case doubleTab:
		ps.le.write("\n" + strings.Join(cands, "  ") + "\n")
		ps.redraw()

	default:
		lcp := LongestCommonPrefix(cands)
		if len(lcp) > len(ps.line) {
			ps.line = []byte(lcp)
			ps.cursor = len(ps.line)
			ps.redraw()
		} else {
			ps.le.write("\a")
		}
	}
}

// redraw repaints the prompt and buffer and parks the physical cursor
// at the logical column.
func (ps *promptState) redraw() {
	ps.le.write("\r\x1b[K" + ps.le.prompt + string(ps.line) + "\r")
	if n := len(ps.le.prompt) + ps.cursor; n > 0 {
		fmt.Fprintf(ps.le.out, "\x1b[%dC", n)
	}
}

func (le *LineEditor) write(s string) {
	io.WriteString(le.out, s)
}

// readSimple is the canonical-mode fallback when raw mode is
// unavailable.
func (le *LineEditor) readSimple() (string, error) {
	le.write(le.prompt)
	line, err := le.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return "", ErrEndOfTransmission
		}
		if !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return strings.TrimSuffix(line, "\n"), nil
}
