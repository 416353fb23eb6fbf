package job

import (
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Role is a set of signal dispositions a process takes on when it enters a
// position in the job-control protocol.
type Role int

const (
	// RoleShell ignores the keyboard and terminal-access signals so the shell
	// survives ^C and ^Z and can reclaim the terminal from the background.
	RoleShell Role = iota

	// RoleForegroundChild returns the same signals to their default action
	// before the child replaces its image.
	RoleForegroundChild
)

var jobControlSignals = []os.Signal{
	unix.SIGINT,
	unix.SIGQUIT,
	unix.SIGTSTP,
	unix.SIGTTIN,
	unix.SIGTTOU,
}

func (r Role) String() string {
	switch r {
	case RoleShell:
		return "shell"
	case RoleForegroundChild:
		return "foreground-child"
	default:
		return "unknown"
	}
}

// Apply installs the role's dispositions on the current process. It is
// called once when the process enters the role.
func (r Role) Apply() {
	switch r {
	case RoleShell:
		signal.Ignore(jobControlSignals...)
	case RoleForegroundChild:
		// A caught signal is reset to SIG_DFL by exec, an ignored one stays
		// ignored, so the handlers are installed rather than reset.
		signal.Notify(make(chan os.Signal, 1), jobControlSignals...)
	}
}
