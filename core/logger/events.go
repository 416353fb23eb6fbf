package logger

// LogEntry is a single recorded event. Exactly one of the event fields is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	Spawn     *Spawn     `json:"spawn,omitempty"`
	Exit      *Exit      `json:"exit,omitempty"`
	Stop      *Stop      `json:"stop,omitempty"`
	Resume    *Resume    `json:"resume,omitempty"`
	WaitError *WaitError `json:"wait_error,omitempty"`
	Builtin   *Builtin   `json:"builtin,omitempty"`
}

// GetLogType returns the event held by the entry, or nil if it holds none.
func (le *LogEntry) GetLogType() LogType {
	switch {
	case le.Spawn != nil:
		return le.Spawn
	case le.Exit != nil:
		return le.Exit
	case le.Stop != nil:
		return le.Stop
	case le.Resume != nil:
		return le.Resume
	case le.WaitError != nil:
		return le.WaitError
	case le.Builtin != nil:
		return le.Builtin
	}
	return nil
}

// LogType is implemented by every event that can be stored in a LogEntry.
type LogType interface {
	setOn(le *LogEntry)
}

// Spawn is recorded when a child process has been created.
type Spawn struct {
	Pid     int      `json:"pid"`
	Command []string `json:"command"`
}

// Exit is recorded when a child terminates, either normally (Code) or by a
// signal (Signal).
type Exit struct {
	Pid     int      `json:"pid"`
	Command []string `json:"command"`
	Code    int      `json:"code"`
	Signal  string   `json:"signal,omitempty"`
}

// Stop is recorded when a foreground child is suspended.
type Stop struct {
	Pid     int      `json:"pid"`
	Command []string `json:"command"`
	Signal  string   `json:"signal"`
}

// Resume is recorded when a stopped child is continued in the foreground.
type Resume struct {
	Pid     int      `json:"pid"`
	Command []string `json:"command"`
}

// WaitError is recorded when waiting on a child failed.
type WaitError struct {
	Pid     int      `json:"pid"`
	Command []string `json:"command"`
	Error   string   `json:"error"`
}

// Builtin is recorded after a builtin ran inside the shell.
type Builtin struct {
	Command []string `json:"command"`
	Status  int      `json:"status"`
}

func (e *Spawn) setOn(le *LogEntry)     { le.Spawn = e }
func (e *Exit) setOn(le *LogEntry)      { le.Exit = e }
func (e *Stop) setOn(le *LogEntry)      { le.Stop = e }
func (e *Resume) setOn(le *LogEntry)    { le.Resume = e }
func (e *WaitError) setOn(le *LogEntry) { le.WaitError = e }
func (e *Builtin) setOn(le *LogEntry)   { le.Builtin = e }
