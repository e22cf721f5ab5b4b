package authproxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// State is the lifecycle state of the supervised process.
type State string

const (
	StateAbsent   State = "absent"
	StateStarting State = "starting"
	StateReady    State = "ready"
	StateCrashed  State = "crashed"
)

var (
	// ErrProcessExited indicates the process died during its grace period.
	ErrProcessExited = errors.New("auth process exited")
	// ErrInvalidTransition indicates a state change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// transitions lists the allowed moves of the lifecycle.
var transitions = map[State][]State{
	StateAbsent:   {StateStarting},
	StateStarting: {StateReady, StateCrashed},
	StateReady:    {StateCrashed},
	StateCrashed:  {StateStarting},
}

// Process is a running subprocess.
type Process interface {
	// Wait blocks until the process exits.
	Wait() error
	Kill() error
}

// Launcher starts the subprocess.
type Launcher interface {
	Launch(ctx context.Context) (Process, error)
}

// Supervisor owns one subprocess and restarts it on demand after a crash.
type Supervisor struct {
	launcher Launcher
	grace    time.Duration
	logger   *slog.Logger
	group    singleflight.Group

	mu     sync.Mutex
	state  State
	proc   Process
	spawns int
	exited chan struct{}
}

// NewSupervisor creates a supervisor in the absent state.
func NewSupervisor(launcher Launcher, grace time.Duration, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		launcher: launcher,
		grace:    grace,
		logger:   logger,
		state:    StateAbsent,
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Spawns returns how many times the process has been launched.
func (s *Supervisor) Spawns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spawns
}

// Ensure returns once the process is ready, launching it if needed.
// Concurrent callers share a single launch.
func (s *Supervisor) Ensure(ctx context.Context) error {
	if s.State() == StateReady {
		return nil
	}
	ch := s.group.DoChan("spawn", func() (interface{}, error) {
		return nil, s.spawn(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop kills the process and waits for the supervisor to observe the exit.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	proc, exited := s.proc, s.exited
	s.mu.Unlock()
	if proc == nil {
		return nil
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("authproxy: kill process: %w", err)
	}
	<-exited
	return nil
}

func (s *Supervisor) spawn(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateReady {
		s.mu.Unlock()
		return nil
	}
	if err := s.transition(StateStarting); err != nil {
		s.mu.Unlock()
		return err
	}
	s.spawns++
	s.mu.Unlock()

	proc, err := s.launcher.Launch(ctx)
	if err != nil {
		s.mu.Lock()
		s.transition(StateCrashed)
		s.mu.Unlock()
		s.logger.Error("failed to launch auth process", "error", err)
		return fmt.Errorf("authproxy: launch: %w", err)
	}

	exited := make(chan struct{})
	s.mu.Lock()
	s.proc = proc
	s.exited = exited
	s.mu.Unlock()
	go s.watch(proc, exited)

	timer := time.NewTimer(s.grace)
	defer timer.Stop()
	select {
	case <-exited:
		return ErrProcessExited
	case <-timer.C:
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc != proc {
		return ErrProcessExited
	}
	if err := s.transition(StateReady); err != nil {
		return err
	}
	s.logger.Info("auth process ready", "spawns", s.spawns)
	return nil
}

func (s *Supervisor) watch(proc Process, exited chan struct{}) {
	err := proc.Wait()

	s.mu.Lock()
	if s.proc == proc {
		s.proc = nil
		s.transition(StateCrashed)
	}
	s.mu.Unlock()
	close(exited)

	s.logger.Warn("auth process exited", "error", err)
}

// transition moves to next if the lifecycle allows it. Callers hold s.mu.
func (s *Supervisor) transition(next State) error {
	for _, allowed := range transitions[s.state] {
		if allowed == next {
			s.logger.Debug("auth process state", "from", s.state, "to", next)
			s.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.state, next)
}
