package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// daemonState is written next to the pid file while the daemon runs.
type daemonState struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	StartedAt time.Time `json:"started_at"`
	DBPath    string    `json:"db_path"`
}

// daemonProc manages the pid file of a daemon process and its sidecar
// state file.
type daemonProc struct {
	pidFile string
}

func (p daemonProc) statePath() string {
	return p.pidFile + ".json"
}

// pid returns the recorded process id.
func (p daemonProc) pid() (int, error) {
	data, err := os.ReadFile(p.pidFile) //nolint:gosec // pid path is configured by the local user
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", p.pidFile)
	}
	return pid, nil
}

// running returns the live pid, or zero when no daemon is alive.
func (p daemonProc) running() int {
	pid, err := p.pid()
	if err != nil || !processAlive(pid) {
		return 0
	}
	return pid
}

// claim records st as the running daemon. It fails if another daemon is
// alive and clears files left behind by a dead one.
func (p daemonProc) claim(st daemonState) error {
	if pid := p.running(); pid != 0 {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	p.release()

	if err := os.MkdirAll(filepath.Dir(p.pidFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.WriteFile(p.pidFile, []byte(strconv.Itoa(st.PID)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// The state file is informational; status falls back to flags without it.
	_ = os.WriteFile(p.statePath(), append(data, '\n'), 0o600)
	return nil
}

func (p daemonProc) release() {
	_ = os.Remove(p.pidFile)
	_ = os.Remove(p.statePath())
}

func (p daemonProc) state() (daemonState, error) {
	var st daemonState
	data, err := os.ReadFile(p.statePath()) //nolint:gosec // state path is configured by the local user
	if err != nil {
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// stop sends SIGTERM and waits up to timeout for the process to exit.
func (p daemonProc) stop(timeout time.Duration) (int, error) {
	pid, err := p.pid()
	if err != nil {
		return 0, errors.New("daemon is not running")
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal daemon process: %w", err)
	}

	for deadline := time.Now().Add(timeout); time.Now().Before(deadline); time.Sleep(150 * time.Millisecond) {
		if !processAlive(pid) {
			p.release()
			return pid, nil
		}
	}
	return pid, fmt.Errorf("daemon (pid %d) did not exit in time", pid)
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// withoutDetach drops --detach from args so the child runs in the foreground.
func withoutDetach(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a != "--detach" && !strings.HasPrefix(a, "--detach=") {
			out = append(out, a)
		}
	}
	return out
}
