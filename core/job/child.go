package job

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/jobsh/core/env"
	"golang.org/x/sys/unix"
)

const (
	// ChildCommand is the subcommand that runs RunChild in a fresh copy of
	// the shell binary.
	ChildCommand = "exec-child"

	// ChildFailureStatus is the exit status of a child that could not run
	// its program.
	ChildFailureStatus = 1
)

// RunChild takes on the foreground child role and replaces the current
// process with argv. It only returns if the program could not be started.
func RunChild(e env.VEnv, argv []string) error {
	if len(argv) == 0 {
		return errors.New("no command")
	}

	path, err := LookPath(e, argv[0])
	if err != nil {
		return err
	}

	RoleForegroundChild.Apply()
	return unix.Exec(path, argv, e.Environ())
}

// ExecChild runs argv as RunChild does, reporting failures on stderr and
// exiting with ChildFailureStatus. It never returns.
func ExecChild(argv []string) {
	err := RunChild(env.NewOSEnv(), argv)
	reportChildError(os.Stderr, argv, err)
	os.Exit(ChildFailureStatus)
}

func reportChildError(w io.Writer, argv []string, err error) {
	name := "exec"
	if len(argv) > 0 {
		name = argv[0]
	}

	switch {
	case errors.Is(err, ErrNotFound):
		fmt.Fprintf(w, "%s: command not found\n", name)
	default:
		fmt.Fprintf(w, "%s: %v\n", name, err)
	}
}
