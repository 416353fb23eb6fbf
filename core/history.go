package core

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// History is the list of accepted input lines. Entries are numbered from 1
// and keep their numbers when old entries are dropped to respect the limit.
type History struct {
	// Limit is the maximum number of entries kept, 0 keeps everything.
	Limit int

	base  int
	lines []string
}

// Add appends a line, dropping the oldest entries beyond the limit.
func (h *History) Add(line string) {
	h.lines = append(h.lines, line)
	if h.Limit > 0 && len(h.lines) > h.Limit {
		drop := len(h.lines) - h.Limit
		h.base += drop
		h.lines = append([]string(nil), h.lines[drop:]...)
	}
}

// Lines returns the entries oldest first.
func (h *History) Lines() []string {
	return h.lines
}

// Len is the number of entries kept.
func (h *History) Len() int {
	return len(h.lines)
}

// Clear drops every entry, numbering starts again at 1.
func (h *History) Clear() {
	h.base = 0
	h.lines = nil
}

// WriteTo prints the entries as "N: line".
func (h *History) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, line := range h.lines {
		n, err := fmt.Fprintf(w, "%d: %s\n", h.base+i+1, line)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Load appends one entry per line of r.
func (h *History) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			h.Add(line)
		}
	}
	return scanner.Err()
}

// Save writes one entry per line to w.
func (h *History) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, line := range h.lines {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
