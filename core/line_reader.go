package core

import (
	"errors"

	"github.com/peterh/liner"
)

// ErrInterrupt is returned by a LineReader when the user aborts the line
// being edited.
var ErrInterrupt = errors.New("interrupt")

// LineReader reads edited input lines from the user.
type LineReader interface {
	// Prompt shows prompt and returns the next line without its newline.
	// It returns io.EOF at end of input and ErrInterrupt on ^C.
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	ClearHistory()
	Close() error
}

// linerReader edits lines with liner. The terminal stays in the modes the
// shell found it in except while a prompt is shown, so jobs never inherit
// the editor's raw mode.
type linerReader struct {
	state    *liner.State
	cooked   liner.ModeApplier
	uncooked liner.ModeApplier
}

var _ LineReader = (*linerReader)(nil)

// NewLinerReader creates a LineReader on the process's terminal.
func NewLinerReader() LineReader {
	cooked, cookedErr := liner.TerminalMode()
	state := liner.NewLiner()
	uncooked, uncookedErr := liner.TerminalMode()

	state.SetCtrlCAborts(true)

	r := &linerReader{state: state}
	// TerminalMode returns a typed nil on failure, so only the errors are
	// trusted.
	if cookedErr == nil && uncookedErr == nil {
		r.cooked = cooked
		r.uncooked = uncooked
		r.cooked.ApplyMode()
	}
	return r
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	if r.uncooked != nil {
		r.uncooked.ApplyMode()
		defer r.cooked.ApplyMode()
	}

	line, err := r.state.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", ErrInterrupt
	}
	return line, err
}

func (r *linerReader) AppendHistory(line string) {
	r.state.AppendHistory(line)
}

func (r *linerReader) ClearHistory() {
	r.state.ClearHistory()
}

func (r *linerReader) Close() error {
	return r.state.Close()
}
