package authproxy

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
)

// ExecLauncher starts the GoTrue binary with the environment of a Config.
type ExecLauncher struct {
	cfg    *Config
	logger *slog.Logger
}

// NewExecLauncher creates a launcher for cfg.BinaryPath.
func NewExecLauncher(cfg *Config, logger *slog.Logger) *ExecLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExecLauncher{cfg: cfg, logger: logger}
}

// Launch starts the binary. The process outlives ctx; it is stopped through
// the returned Process.
func (l *ExecLauncher) Launch(ctx context.Context) (Process, error) {
	cmd := exec.Command(l.cfg.BinaryPath)
	cmd.Dir = l.cfg.TaskRoot
	cmd.Env = l.cfg.ProcessEnv(os.Environ())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", l.cfg.BinaryPath, err)
	}
	l.logger.InfoContext(ctx, "auth process started", "pid", cmd.Process.Pid, "dir", cmd.Dir)
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
