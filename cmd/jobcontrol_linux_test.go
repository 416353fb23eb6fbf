package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

const ptyTimeout = 10 * time.Second

// ptySession runs jobsh on a pseudo-terminal.
type ptySession struct {
	t      *testing.T
	master *os.File
	pid    int
	exited chan error

	mu     sync.Mutex
	out    bytes.Buffer
	offset int
}

func startPtySession(t *testing.T) *ptySession {
	t.Helper()

	cmd := jobshCommand()
	cmd.Env = append(cmd.Env, "MY_PROMPT=test>")
	master, err := pty.Start(cmd)
	if err != nil {
		t.Skipf("pseudo-terminals unavailable: %v", err)
	}

	s := &ptySession{t: t, master: master, pid: cmd.Process.Pid, exited: make(chan error, 1)}
	go func() {
		s.exited <- cmd.Wait()
	}()
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := master.Read(buf)
			s.mu.Lock()
			s.out.Write(buf[:n])
			s.mu.Unlock()
			if err != nil {
				return
			}
		}
	}()

	t.Cleanup(func() {
		cmd.Process.Kill()
		master.Close()
	})
	t.Cleanup(func() {
		if t.Failed() {
			s.mu.Lock()
			t.Logf("terminal output:\n%s", s.out.String())
			s.mu.Unlock()
		}
	})

	return s
}

func (s *ptySession) send(input string) {
	s.t.Helper()

	_, err := s.master.Write([]byte(input))
	require.NoError(s.t, err)
}

// expect waits for want to appear after the previous match.
func (s *ptySession) expect(want string) {
	s.t.Helper()

	deadline := time.Now().Add(ptyTimeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		idx := strings.Index(s.out.String()[s.offset:], want)
		if idx >= 0 {
			s.offset += idx + len(want)
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	s.t.Fatalf("timed out waiting for %q", want)
}

func (s *ptySession) foreground() int {
	s.t.Helper()

	pgid, err := unix.IoctlGetInt(int(s.master.Fd()), unix.TIOCGPGRP)
	require.NoError(s.t, err)
	return pgid
}

// waitForeground waits until the terminal belongs to a process group led by
// a process named comm, and returns the group.
func (s *ptySession) waitForeground(comm string) int {
	s.t.Helper()

	deadline := time.Now().Add(ptyTimeout)
	for time.Now().Before(deadline) {
		pgid := s.foreground()
		if pgid != s.pid {
			name, err := os.ReadFile(fmt.Sprintf("/proc/%d/comm", pgid))
			if err == nil && strings.TrimSpace(string(name)) == comm {
				return pgid
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.t.Fatalf("timed out waiting for %q to own the terminal", comm)
	return 0
}

func TestJobControl_stopAndResume(t *testing.T) {
	s := startPtySession(t)
	s.expect("test>")
	assert.Equal(t, s.pid, s.foreground(), "shell should own the terminal at the prompt")

	s.send("sleep 30\n")
	job := s.waitForeground("sleep")

	// ^Z
	s.send("\x1a")
	s.expect(fmt.Sprintf("[%d] Stopped", job))
	s.expect("test>")
	assert.Equal(t, s.pid, s.foreground(), "terminal should return to the shell after a stop")

	s.send("fg\n")
	s.expect("sleep 30")
	assert.Equal(t, job, s.waitForeground("sleep"), "fg should resume the same job")

	// ^C reaches the job, not the shell.
	s.send("\x03")
	s.expect("test>")
	assert.Equal(t, s.pid, s.foreground(), "terminal should return to the shell after the job dies")

	s.send("fg\n")
	s.expect("fg: no stopped job")
	s.expect("test>")

	s.send("exit\n")
	select {
	case err := <-s.exited:
		assert.NoError(t, err, "shell should exit with status 0")
	case <-time.After(ptyTimeout):
		t.Fatal("timed out waiting for the shell to exit")
	}
}

var (
	leaderPattern = regexp.MustCompile(`shell-pid=(\d+)`)
	statPattern   = regexp.MustCompile(`shell-stat=\d+ \(.*\) \S+ \d+ (\d+)`)
	sigIgnPattern = regexp.MustCompile(`SigIgn:\s*([0-9a-f]+)`)
)

func TestRun_notInteractiveClaimsProcessGroup(t *testing.T) {
	script := filepath.Join(t.TempDir(), "inspect-shell")
	body := "#!/bin/sh\n" +
		"echo \"shell-pid=$PPID\"\n" +
		"echo \"shell-stat=$(cat /proc/$PPID/stat)\"\n" +
		"grep SigIgn /proc/$PPID/status\n"
	require.NoError(t, os.WriteFile(script, []byte(body), 0755))

	out, status := runJobsh(t, script+"\n")
	require.Equal(t, 0, status, out)

	pid := leaderPattern.FindStringSubmatch(out)
	stat := statPattern.FindStringSubmatch(out)
	ignored := sigIgnPattern.FindStringSubmatch(out)
	require.NotNil(t, pid, out)
	require.NotNil(t, stat, out)
	require.NotNil(t, ignored, out)

	assert.Equal(t, pid[1], stat[1], "shell should lead its own process group")

	mask, err := strconv.ParseUint(ignored[1], 16, 64)
	require.NoError(t, err)
	for _, sig := range []unix.Signal{unix.SIGINT, unix.SIGQUIT, unix.SIGTSTP, unix.SIGTTIN, unix.SIGTTOU} {
		assert.NotZero(t, mask&(1<<(uint(sig)-1)), "%v should be ignored by the shell", sig)
	}
}
