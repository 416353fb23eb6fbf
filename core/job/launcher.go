package job

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/josephlewis42/jobsh/core/env"
	"github.com/josephlewis42/jobsh/core/logger"
	"golang.org/x/sys/unix"
)

var (
	// ErrSpawn is returned when no child process could be created.
	ErrSpawn = errors.New("spawn failed")

	// ErrWait is returned when the status of a job could not be collected.
	ErrWait = errors.New("wait failed")
)

// Trampoline is the program forked for every job. It is expected to call
// RunChild with the arguments that follow Args.
type Trampoline struct {
	Path string
	Args []string
	// Env is appended to the job's environment.
	Env []string
}

// DefaultTrampoline re-executes the running binary with ChildCommand.
func DefaultTrampoline() (Trampoline, error) {
	exe, err := os.Executable()
	if err != nil {
		return Trampoline{}, err
	}
	return Trampoline{Path: exe, Args: []string{exe, ChildCommand}}, nil
}

// Launcher runs commands as foreground jobs on a terminal.
type Launcher struct {
	Terminal   *Terminal
	ShellPgid  int
	Trampoline Trampoline

	// Env is passed to jobs, the process environment if nil.
	Env env.VEnv

	// Standard streams of the jobs, the process's own if nil.
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	Events logger.EventRecorder
}

func (l *Launcher) terminal() *Terminal {
	if l.Terminal == nil {
		l.Terminal = &Terminal{Fd: -1}
	}
	return l.Terminal
}

func (l *Launcher) environ() []string {
	var out []string
	if l.Env != nil {
		out = l.Env.Environ()
	} else {
		out = os.Environ()
	}
	return append(out, l.Trampoline.Env...)
}

func (l *Launcher) files() []uintptr {
	pick := func(f, fallback *os.File) uintptr {
		if f == nil {
			f = fallback
		}
		return f.Fd()
	}

	return []uintptr{
		pick(l.Stdin, os.Stdin),
		pick(l.Stdout, os.Stdout),
		pick(l.Stderr, os.Stderr),
	}
}

func (l *Launcher) record(event logger.LogType) {
	if l.Events == nil {
		return
	}
	// Recording failures are dropped.
	_ = l.Events.Record(event)
}

// Spawn forks a child in a new process group and gives it the terminal.
func (l *Launcher) Spawn(argv []string) (*Job, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrSpawn)
	}

	term := l.terminal()
	args := append(append([]string{}, l.Trampoline.Args...), argv...)
	pid, err := syscall.ForkExec(l.Trampoline.Path, args, &syscall.ProcAttr{
		Env:   l.environ(),
		Files: l.files(),
		Sys: &syscall.SysProcAttr{
			Setpgid:    true,
			Foreground: term.Interactive,
			// Ctty is numbered in the child, the terminal is its stdin.
			Ctty: 0,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSpawn, argv[0], err)
	}

	// Both sides set the group and the foreground so neither races the
	// other. Once the child has exec'd setpgid fails with EACCES, once it
	// has exited both calls fail with ESRCH or EPERM.
	if err := childWon(unix.Setpgid(pid, pid), unix.EACCES, unix.ESRCH); err != nil {
		l.abandon(pid)
		return nil, fmt.Errorf("%w: setpgid %d: %v", ErrSpawn, pid, err)
	}
	if err := childWon(term.SetForeground(pid), unix.EPERM, unix.ESRCH); err != nil {
		l.abandon(pid)
		return nil, fmt.Errorf("%w: tcsetpgrp %d: %v", ErrSpawn, pid, err)
	}

	j := &Job{Pid: pid, Pgid: pid, Argv: argv, State: Running}
	l.record(&logger.Spawn{Pid: pid, Command: argv})
	return j, nil
}

// childWon drops err if it is one of the errors the parent sees when the
// child got there first.
func childWon(err error, raced ...unix.Errno) error {
	for _, errno := range raced {
		if errors.Is(err, errno) {
			return nil
		}
	}
	return err
}

// abandon kills and reaps a child that could not be set up as a job, then
// takes the terminal back.
func (l *Launcher) abandon(pid int) {
	unix.Kill(pid, unix.SIGKILL)
	var ws unix.WaitStatus
	for {
		if _, err := unix.Wait4(pid, &ws, 0, nil); err != unix.EINTR {
			break
		}
	}
	l.terminal().SetForeground(l.ShellPgid)
}

// Wait blocks until the job exits, is killed or stops.
func (l *Launcher) Wait(j *Job) error {
	var ws unix.WaitStatus
	for {
		_, err := unix.Wait4(j.Pid, &ws, unix.WUNTRACED, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			l.record(&logger.WaitError{Pid: j.Pid, Command: j.Argv, Error: err.Error()})
			return fmt.Errorf("%w: pid %d: %v", ErrWait, j.Pid, err)
		}
		break
	}

	j.update(ws)
	switch j.State {
	case Stopped:
		l.record(&logger.Stop{Pid: j.Pid, Command: j.Argv, Signal: signalName(j.Signal)})
	case Signaled:
		l.record(&logger.Exit{Pid: j.Pid, Command: j.Argv, Signal: signalName(j.Signal)})
	case Exited:
		l.record(&logger.Exit{Pid: j.Pid, Command: j.Argv, Code: j.Code})
	}
	return nil
}

// Launch spawns argv and waits for it to finish or stop. The terminal is
// back with the shell when Launch returns.
func (l *Launcher) Launch(argv []string) (j *Job, err error) {
	j, err = l.Spawn(argv)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := l.reclaim(j); err == nil {
			err = rerr
		}
	}()

	return j, l.Wait(j)
}

// Resume continues a stopped job in the foreground and waits for it to
// finish or stop again. The terminal is back with the shell when Resume
// returns.
func (l *Launcher) Resume(j *Job) (err error) {
	term := l.terminal()
	defer func() {
		if rerr := l.reclaim(j); err == nil {
			err = rerr
		}
	}()

	if err := term.SetModes(j.modes); err != nil {
		return fmt.Errorf("restoring job terminal modes: %w", err)
	}
	if err := term.SetForeground(j.Pgid); err != nil {
		return fmt.Errorf("giving terminal to job: %w", err)
	}
	if err := unix.Kill(-j.Pgid, unix.SIGCONT); err != nil {
		return fmt.Errorf("continuing job %d: %w", j.Pgid, err)
	}

	j.State = Running
	l.record(&logger.Resume{Pid: j.Pid, Command: j.Argv})
	return l.Wait(j)
}

// reclaim returns the terminal to the shell, keeping a stopped job's modes
// for a later Resume.
func (l *Launcher) reclaim(j *Job) error {
	term := l.terminal()
	if err := term.SetForeground(l.ShellPgid); err != nil {
		return fmt.Errorf("reclaiming terminal: %w", err)
	}

	if j.State == Stopped {
		modes, err := term.Modes()
		if err != nil {
			return fmt.Errorf("saving job terminal modes: %w", err)
		}
		j.modes = modes
	}
	return term.RestoreModes()
}
