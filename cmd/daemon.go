package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/danak/internal/cli"
	"github.com/theirongolddev/danak/internal/config"
	"github.com/theirongolddev/danak/internal/daemon"
)

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonPIDFile      string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the tax monitor daemon with HTTP/SSE endpoints",
	Long: "Polls the record store, keeps the current month's tax summary, and\n" +
		"serves it as JSON, server-sent events, and Prometheus metrics.",
	RunE: runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

func init() {
	pf := daemonCmd.PersistentFlags()
	pf.StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	pf.DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	pf.StringVar(&flagDaemonPIDFile, "pid-file", filepath.Join(config.DataDir(), "danakd.pid"), "PID file path")
	pf.StringVar(&flagDaemonLogFile, "log-file", filepath.Join(config.DataDir(), "danakd.log"), "Log file path for detached mode")
	pf.IntVar(&flagDaemonEventsBuffer, "events-buffer", 200, "Max in-memory events retained")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonAddr returns --addr or the configured server address.
func daemonAddr() string {
	if flagDaemonAddr != "" {
		return flagDaemonAddr
	}
	return appCfg.Server.Addr
}

func daemonInterval() time.Duration {
	if flagDaemonInterval > 0 {
		return flagDaemonInterval
	}
	return time.Duration(appCfg.Server.IntervalSec) * time.Second
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	proc := daemonProc{pidFile: flagDaemonPIDFile}
	if flagDaemonDetach {
		return startDaemonDetached(proc)
	}
	return runDaemonForeground(proc)
}

// startDaemonDetached re-executes the binary in the background with its
// output appended to the log file.
func startDaemonDetached(proc daemonProc) error {
	if pid := proc.running(); pid != 0 {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600) //nolint:gosec // log path is configured by the local user
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	child := exec.Command(exe, append(withoutDetach(os.Args[1:]), "--child")...) //nolint:gosec // re-runs the current invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  PID file: %s\n", proc.pidFile)
	fmt.Printf("  API: http://%s/v1/status\n", daemonAddr())
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground(proc daemonProc) error {
	addr := daemonAddr()
	if err := proc.claim(daemonState{
		PID:       os.Getpid(),
		Addr:      addr,
		StartedAt: time.Now(),
		DBPath:    appCfg.DBPath(),
	}); err != nil {
		return err
	}
	defer proc.release()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	cfg := daemon.Config{
		App:          appCfg,
		DBPath:       appCfg.DBPath(),
		Interval:     daemonInterval(),
		Addr:         addr,
		EventsBuffer: flagDaemonEventsBuffer,
	}
	if flagDate != "" {
		ref, err := refDate()
		if err != nil {
			return err
		}
		cfg.Now = func() time.Time { return ref }
	}
	svc := daemon.New(cfg, st)

	fmt.Printf("  danak daemon listening on http://%s\n", addr)
	fmt.Printf("  Polling %s every %s\n", cfg.DBPath, cfg.Interval)
	fmt.Printf("  Stop with: danak daemon stop --pid-file %s\n", proc.pidFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// fetchStatus queries the daemon's status endpoint.
func fetchStatus(addr string) (daemon.Status, error) {
	var st daemon.Status

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/v1/status", nil)
	if err != nil {
		return st, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return st, fmt.Errorf("unreachable (%w)", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return st, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return st, fmt.Errorf("malformed response (%w)", err)
	}
	return st, nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	proc := daemonProc{pidFile: flagDaemonPIDFile}
	pid, err := proc.pid()
	if err != nil {
		fmt.Println("  Daemon: not running (pid file not found)")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  Daemon: stale pid file (pid %d not alive)\n", pid)
		return nil
	}

	addr := daemonAddr()
	if ds, err := proc.state(); err == nil && ds.Addr != "" {
		addr = ds.Addr
	}
	fmt.Printf("  Daemon PID: %d\n", pid)
	fmt.Printf("  Address: http://%s\n", addr)

	st, err := fetchStatus(addr)
	if err != nil {
		fmt.Printf("  API status: %v\n", err)
		return nil
	}

	if st.LastPollAt.IsZero() {
		fmt.Println("  Last poll: pending")
	} else {
		fmt.Printf("  Last poll: %s (%d polls)\n", st.LastPollAt.Local().Format(time.RFC3339), st.PollCount)
	}

	cur := displayCurrency()
	s := st.Summary
	fmt.Printf("  Database: %s (%s base)\n", st.DBPath, st.BaseMode)
	fmt.Printf("  Month: %s, %d records\n", cli.FormatPeriodMonth(s.Year, time.Month(s.Month)), s.MonthRecords)
	fmt.Printf("  Income: %s\n", cli.FormatMoney(s.TotalIncome, cur))
	fmt.Printf("  Due: %s\n", cli.FormatMoney(s.SocialSecurity.Add(s.IncomeTax), cur))
	fmt.Printf("  VAT progress: %s\n", cli.FormatPercent(s.VATProgressPercent))
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	pid, err := daemonProc{pidFile: flagDaemonPIDFile}.stop(8 * time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped daemon (pid %d)\n", pid)
	return nil
}
