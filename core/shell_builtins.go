package core

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/josephlewis42/jobsh/core/env"
	"github.com/josephlewis42/jobsh/core/job"
	"github.com/josephlewis42/jobsh/core/logger"
	"github.com/josephlewis42/jobsh/core/shell"
	"github.com/pborman/getopt/v2"
)

// ErrNoStoppedJob is reported by fg when there is nothing to resume.
var ErrNoStoppedJob = errors.New("no stopped job")

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]ShellBuiltin)

type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

// BuiltinNames lists the registered builtins in sorted order.
func BuiltinNames() []string {
	var out []string
	for name := range AllBuiltins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TryBuiltin runs cmd if it names a builtin and reports whether it did.
func TryBuiltin(s *Shell, cmd shell.Command) bool {
	if len(cmd) == 0 {
		return false
	}

	builtin, ok := AllBuiltins[cmd.Name()]
	if !ok {
		return false
	}

	// exit does not return, so it is logged up front.
	if cmd.Name() == "exit" {
		s.recordBuiltin(cmd, 0)
	}
	status := builtin.Main(s, cmd)
	if cmd.Name() != "exit" {
		s.recordBuiltin(cmd, status)
	}
	return true
}

func (s *Shell) recordBuiltin(cmd shell.Command, status int) {
	if s.Events == nil {
		return
	}
	if err := s.Events.Record(&logger.Builtin{Command: cmd, Status: status}); err != nil {
		s.log.Printf("recording event: %v", err)
	}
}

// Cd is the cd shell builtin
func Cd(s *Shell, args []string) int {
	switch len(args) {
	case 1:
		home, err := env.HomeDir(s.VirtualEnv)
		if err != nil {
			fmt.Fprintf(s.Stderr, "%s: %v\n", args[0], err)
			return 1
		}
		args = append(args, home)
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(s.Stderr, "%s: %v\n", args[0], err)
			return 1
		}
	default:
		fmt.Fprintf(s.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	if wd, err := os.Getwd(); err == nil {
		s.VirtualEnv.Setenv(env.EnvPWD, wd)
	}
	return 0
}

// Exit quits the shell
func Exit(s *Shell, args []string) int {
	s.Destroy()
	s.exit(0)
	return 0
}

// HistoryBuiltin prints or clears the list of accepted lines.
func HistoryBuiltin(s *Shell, args []string) int {
	opts := getopt.New()
	clear := opts.Bool('c', "clear the history by deleting all entries")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: history [-c]")
		fmt.Fprintln(w, "Display the history list with line numbers.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		if err != nil {
			return 2
		}
		return 0
	}

	if *clear {
		s.history.Clear()
		s.Reader.ClearHistory()
		return 0
	}

	s.history.WriteTo(s.Stdout)
	return 0
}

// Fg resumes the stopped job in the foreground.
func Fg(s *Shell, args []string) int {
	j := s.stopped
	if j == nil {
		fmt.Fprintf(s.Stderr, "%s: %v\n", args[0], ErrNoStoppedJob)
		return 1
	}

	s.stopped = nil
	fmt.Fprintln(s.Stdout, strings.Join(j.Argv, " "))

	err := s.Launcher.Resume(j)
	if err != nil {
		s.warning.Fprintf(s.Stderr, "%s: %v\n", args[0], err)
	}
	s.track(j)

	if err != nil || j.State == job.Stopped {
		return 1
	}
	return j.ExitStatus()
}

func init() {
	AllBuiltins["cd"] = ShellBuiltinFunc(Cd)
	AllBuiltins["exit"] = ShellBuiltinFunc(Exit)
	AllBuiltins["history"] = ShellBuiltinFunc(HistoryBuiltin)
	AllBuiltins["fg"] = ShellBuiltinFunc(Fg)
}
