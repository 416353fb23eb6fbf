package core

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"unicode"

	"github.com/fatih/color"
	"github.com/josephlewis42/jobsh/core/config"
	"github.com/josephlewis42/jobsh/core/env"
	"github.com/josephlewis42/jobsh/core/job"
	"github.com/josephlewis42/jobsh/core/logger"
	"github.com/josephlewis42/jobsh/core/shell"
	"golang.org/x/sys/unix"
)

const (
	// AbortStatus is the exit status when the shell cannot create a child.
	AbortStatus = 134

	Farewell = "Goodbye!"
)

// Shell is an interactive command interpreter with job control.
type Shell struct {
	VirtualEnv env.VEnv
	Config     *config.Configuration
	Reader     LineReader
	Launcher   *job.Launcher
	Terminal   *job.Terminal
	Stdout     io.Writer
	Stderr     io.Writer
	Events     logger.EventRecorder

	prompt  string
	pgid    int
	stopped *job.Job
	history History

	exit      func(int)
	destroyed bool
	toClose   listCloser

	log     *log.Logger
	notice  *color.Color
	warning *color.Color
}

// Option configures a Shell.
type Option func(*Shell)

// WithEnv sets the environment the prompt, home directory and search path
// are read from.
func WithEnv(e env.VEnv) Option {
	return func(s *Shell) { s.VirtualEnv = e }
}

// WithReader replaces the terminal line editor.
func WithReader(r LineReader) Option {
	return func(s *Shell) { s.Reader = r }
}

// WithTerminal sets the controlling terminal.
func WithTerminal(t *job.Terminal) Option {
	return func(s *Shell) { s.Terminal = t }
}

// WithLauncher sets the job launcher, its terminal and process group are
// filled in by Init.
func WithLauncher(l *job.Launcher) Option {
	return func(s *Shell) { s.Launcher = l }
}

// WithOutput sets the streams builtins and notices are written to.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(s *Shell) {
		s.Stdout = stdout
		s.Stderr = stderr
	}
}

// WithExit replaces os.Exit for the exit builtin and fatal errors.
func WithExit(exit func(int)) Option {
	return func(s *Shell) { s.exit = exit }
}

// NewShell creates a shell from the configuration. Nothing process-wide is
// changed until Init.
func NewShell(cfg *config.Configuration, opts ...Option) (*Shell, error) {
	s := &Shell{
		Config: cfg,
		exit:   os.Exit,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.VirtualEnv == nil {
		s.VirtualEnv = env.NewOSEnv()
	}
	if s.Stdout == nil {
		s.Stdout = os.Stdout
	}
	if s.Stderr == nil {
		s.Stderr = os.Stderr
	}
	if s.Terminal == nil {
		s.Terminal = job.NewTerminal(os.Stdin)
	}
	s.log = log.New(s.Stderr, "[jobsh] ", 0)

	s.notice = color.New(color.FgYellow)
	s.warning = color.New(color.FgRed)
	if !cfg.Color {
		s.notice.DisableColor()
		s.warning.DisableColor()
	}

	s.history.Limit = cfg.HistoryLimit
	if err := s.loadHistory(); err != nil {
		return nil, err
	}

	s.Events = &logger.NopEventRecorder{}
	if cfg.EventLog != "" {
		fd, err := cfg.OpenEventLog()
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		s.toClose = append(s.toClose, fd)
		s.Events = logger.NewJsonLinesLogRecorder(fd).NewSession()
	}

	if s.Launcher == nil {
		trampoline, err := job.DefaultTrampoline()
		if err != nil {
			s.toClose.Close()
			return nil, err
		}
		s.Launcher = &job.Launcher{Trampoline: trampoline}
	}
	if s.Launcher.Env == nil {
		s.Launcher.Env = s.VirtualEnv
	}
	if s.Launcher.Events == nil {
		s.Launcher.Events = s.Events
	}

	return s, nil
}

func (s *Shell) loadHistory() error {
	if s.Config.HistoryFile == "" {
		return nil
	}

	fd, err := s.Config.OpenHistory()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("opening history: %w", err)
	}
	defer fd.Close()

	return s.history.Load(fd)
}

func (s *Shell) saveHistory() error {
	if s.Config.HistoryFile == "" {
		return nil
	}

	fd, err := s.Config.CreateHistory()
	if err != nil {
		return err
	}
	if err := s.history.Save(fd); err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// Init claims the terminal: the shell starts ignoring job-control signals,
// becomes the leader of its own process group and takes the foreground.
// When stdin is not a terminal there is no foreground to take.
func (s *Shell) Init() error {
	s.refreshPrompt()

	// Ignore SIGTTOU first, otherwise claiming the terminal from the
	// background stops the shell.
	job.RoleShell.Apply()

	pid := os.Getpid()
	if unix.Getpgrp() != pid {
		if err := unix.Setpgid(0, 0); err != nil {
			return fmt.Errorf("setpgid: %w", err)
		}
	}
	s.pgid = pid

	term := s.Terminal
	if err := term.SetForeground(s.pgid); err != nil {
		return fmt.Errorf("claiming terminal: %w", err)
	}

	if s.Reader == nil {
		s.Reader = NewLinerReader()
	}
	s.toClose = append(s.toClose, s.Reader)
	for _, line := range s.history.Lines() {
		s.Reader.AppendHistory(line)
	}

	// Saved after the line editor has settled on its cooked modes.
	if err := term.SaveModes(); err != nil {
		return fmt.Errorf("saving terminal modes: %w", err)
	}

	s.Launcher.Terminal = term
	s.Launcher.ShellPgid = s.pgid
	return nil
}

// Pgid is the process group the shell runs in.
func (s *Shell) Pgid() int {
	return s.pgid
}

// Prompt is the prompt shown for the next line.
func (s *Shell) Prompt() string {
	return s.prompt
}

// Stopped is the job waiting for fg, nil if none.
func (s *Shell) Stopped() *job.Job {
	return s.stopped
}

// History is the list of accepted lines.
func (s *Shell) History() *History {
	return &s.history
}

func (s *Shell) refreshPrompt() {
	s.prompt = GetPrompt(s.VirtualEnv, s.Config.PromptEnv, s.Config.DefaultPrompt)
}

// GetPrompt returns the value of the environment variable name, or fallback
// if it is unset or empty. Control and format characters are dropped, the
// line editor rejects prompts containing them.
func GetPrompt(e env.VEnv, name, fallback string) string {
	prompt := e.Getenv(name)
	if prompt == "" {
		prompt = fallback
	}

	return strings.Map(func(r rune) rune {
		if unicode.Is(unicode.C, r) {
			return -1
		}
		return r
	}, prompt)
}

// Run reads and executes lines until the end of input. It returns the exit
// status of the shell.
func (s *Shell) Run() int {
	for {
		s.refreshPrompt()
		line, err := s.Reader.Prompt(s.prompt)

		switch {
		case err == io.EOF:
			fmt.Fprintln(s.Stdout, Farewell)
			return 0

		case errors.Is(err, ErrInterrupt):
			continue

		case err != nil:
			s.log.Printf("reading input: %v", err)
			return 1
		}

		s.Execute(line)
	}
}

// Execute runs one input line.
func (s *Shell) Execute(line string) {
	line = shell.Trim(line)
	if line == "" {
		return
	}

	s.history.Add(line)
	s.Reader.AppendHistory(line)

	cmd := shell.Parse(line)
	if TryBuiltin(s, cmd) {
		return
	}
	s.launch(cmd)
}

func (s *Shell) launch(cmd shell.Command) {
	j, err := s.Launcher.Launch(cmd)
	switch {
	case errors.Is(err, job.ErrSpawn):
		s.log.Printf("%v", err)
		s.abort()
		return
	case err != nil:
		s.warning.Fprintf(s.Stderr, "jobsh: %v\n", err)
	}

	if j != nil {
		s.track(j)
	}
}

// track keeps a stopped job for fg. A second stop replaces the first job,
// which stays stopped.
func (s *Shell) track(j *job.Job) {
	if j.State != job.Stopped {
		return
	}

	if s.stopped != nil && s.stopped != j {
		s.warning.Fprintf(s.Stderr, "jobsh: replacing stopped job %d\n", s.stopped.Pid)
	}
	s.stopped = j
	s.notice.Fprintln(s.Stdout, j.String())
}

func (s *Shell) abort() {
	s.Destroy()
	s.exit(AbortStatus)
}

// Destroy releases the shell's resources, saving history if configured.
// Calling it more than once is safe.
func (s *Shell) Destroy() error {
	if s.destroyed {
		return nil
	}
	s.destroyed = true
	s.prompt = ""

	var lastErr error
	if err := s.saveHistory(); err != nil {
		s.log.Printf("saving history: %v", err)
		lastErr = err
	}
	if err := s.toClose.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
