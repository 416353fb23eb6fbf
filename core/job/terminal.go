package job

import (
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
)

// Terminal is the controlling terminal shared by the shell and its
// foreground job. Every method is a no-op when the terminal is not
// interactive.
type Terminal struct {
	Fd          int
	Interactive bool

	// modes are the shell's own terminal modes.
	modes *unix.Termios
}

// NewTerminal wraps f, the terminal is interactive if f is a TTY.
func NewTerminal(f *os.File) *Terminal {
	return &Terminal{
		Fd:          int(f.Fd()),
		Interactive: isatty.IsTerminal(f.Fd()),
	}
}

// SetForeground makes pgid the terminal's foreground process group.
func (t *Terminal) SetForeground(pgid int) error {
	if !t.Interactive {
		return nil
	}
	return unix.IoctlSetPointerInt(t.Fd, unix.TIOCSPGRP, pgid)
}

// Foreground returns the terminal's foreground process group, or the
// caller's group when the terminal is not interactive.
func (t *Terminal) Foreground() (int, error) {
	if !t.Interactive {
		return unix.Getpgrp(), nil
	}
	return unix.IoctlGetInt(t.Fd, unix.TIOCGPGRP)
}

// Modes returns the current terminal modes, nil when not interactive.
func (t *Terminal) Modes() (*unix.Termios, error) {
	if !t.Interactive {
		return nil, nil
	}
	return unix.IoctlGetTermios(t.Fd, ioctlReadTermios)
}

// SetModes applies modes, nil modes are skipped.
func (t *Terminal) SetModes(modes *unix.Termios) error {
	if !t.Interactive || modes == nil {
		return nil
	}
	return unix.IoctlSetTermios(t.Fd, ioctlWriteTermios, modes)
}

// SaveModes records the current modes as the shell's.
func (t *Terminal) SaveModes() error {
	modes, err := t.Modes()
	if err != nil {
		return err
	}
	t.modes = modes
	return nil
}

// RestoreModes reapplies the modes recorded by SaveModes.
func (t *Terminal) RestoreModes() error {
	return t.SetModes(t.modes)
}
