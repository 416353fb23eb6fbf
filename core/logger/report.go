package logger

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries int        `json:"invalid_log_entries,omitempty"`
	Sessions       StrCounter `json:"sessions"`

	Spawn     SpawnReport     `json:"spawn_report"`
	Exit      ExitReport      `json:"exit_report"`
	Stop      StopReport      `json:"stop_report"`
	Resume    ResumeReport    `json:"resume_report"`
	WaitError WaitErrorReport `json:"wait_error_report"`
	Builtin   BuiltinReport   `json:"builtin_report"`
}

// Update adds a log entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++
	if le.SessionID != "" {
		r.Sessions.Increment(le.SessionID)
	}

	switch event := le.GetLogType().(type) {
	case *Spawn:
		r.Spawn.update(event)
	case *Exit:
		r.Exit.update(event)
	case *Stop:
		r.Stop.update(event)
	case *Resume:
		r.Resume.update(event)
	case *WaitError:
		r.WaitError.update(event)
	case *Builtin:
		r.Builtin.update(event)
	default:
		r.InvalidEntries++
	}
}

type SpawnReport struct {
	Count        int        `json:"count"`
	CommandNames StrCounter `json:"command_names"`
}

func (r *SpawnReport) update(e *Spawn) {
	r.Count++
	r.CommandNames.Increment(commandName(e.Command))
}

type ExitReport struct {
	// Statuses counts (command, status) pairs, status is the exit code or the
	// name of the terminating signal.
	Statuses *PathCounter `json:"statuses"`
}

func (r *ExitReport) update(e *Exit) {
	if r.Statuses == nil {
		r.Statuses = NewPathCounter("command", "status")
	}

	status := strconv.Itoa(e.Code)
	if e.Signal != "" {
		status = e.Signal
	}
	r.Statuses.Increment(commandName(e.Command), status)
}

type StopReport struct {
	Count   int        `json:"count"`
	Signals StrCounter `json:"signals"`
}

func (r *StopReport) update(e *Stop) {
	r.Count++
	r.Signals.Increment(e.Signal)
}

type ResumeReport struct {
	Count        int        `json:"count"`
	CommandNames StrCounter `json:"command_names"`
}

func (r *ResumeReport) update(e *Resume) {
	r.Count++
	r.CommandNames.Increment(commandName(e.Command))
}

type WaitErrorReport struct {
	Errors []string `json:"errors"`
}

func (r *WaitErrorReport) update(e *WaitError) {
	r.Errors = append(r.Errors, e.Error)
}

type BuiltinReport struct {
	CommandNames StrCounter `json:"command_names"`
	Failures     int        `json:"failures"`
}

func (r *BuiltinReport) update(e *Builtin) {
	r.CommandNames.Increment(commandName(e.Command))
	if e.Status != 0 {
		r.Failures++
	}
}

func commandName(argv []string) string {
	if len(argv) == 0 {
		return ""
	}
	return argv[0]
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implements a custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	if s.internal == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.internal)
}

// NewPathCounter creates a counter over tuples with the given column names.
func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of tuples seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given tuple.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// Get returns the count for the given tuple.
func (ctr *PathCounter) Get(vals ...string) int {
	return ctr.internal[toKey(vals...)]
}

// MarshalJSON implements a custom JSON marshaler, tuples are ordered by
// descending count.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return strings.Compare(out[i].Path, out[j].Path) < 0
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
