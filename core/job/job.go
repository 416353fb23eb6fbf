package job

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"
)

// State is the last observed state of a job.
type State int

const (
	Running State = iota
	Stopped
	Exited
	Signaled
)

func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case Stopped:
		return "Stopped"
	case Exited:
		return "Exited"
	case Signaled:
		return "Signaled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Job is a process group started by the Launcher.
type Job struct {
	Pid  int
	Pgid int
	Argv []string

	State State
	// Code is the exit code of an Exited job.
	Code int
	// Signal stopped or killed the job.
	Signal unix.Signal

	// modes holds the job's terminal modes while it is stopped.
	modes *unix.Termios
}

// Status is a short description of the job's state as shown to the user.
func (j *Job) Status() string {
	switch j.State {
	case Exited:
		if j.Code == 0 {
			return "Done"
		}
		return fmt.Sprintf("Exit %d", j.Code)
	case Signaled:
		return signalName(j.Signal)
	default:
		return j.State.String()
	}
}

func (j *Job) String() string {
	return fmt.Sprintf("[%d] %s\t%s", j.Pid, j.Status(), strings.Join(j.Argv, " "))
}

// ExitStatus is the status a shell reports for the job, 128+signal when it
// was killed.
func (j *Job) ExitStatus() int {
	if j.State == Signaled {
		return 128 + int(j.Signal)
	}
	return j.Code
}

func (j *Job) update(ws unix.WaitStatus) {
	switch {
	case ws.Stopped():
		j.State = Stopped
		j.Signal = ws.StopSignal()
	case ws.Signaled():
		j.State = Signaled
		j.Signal = ws.Signal()
	case ws.Exited():
		j.State = Exited
		j.Code = ws.ExitStatus()
	}
}

func signalName(sig unix.Signal) string {
	if name := unix.SignalName(sig); name != "" {
		return name
	}
	return sig.String()
}
