// Package supervise launches compiled argument vectors and streams
// their merged output. One supervisor owns at most one live child; each
// Start produces a fresh Run whose events are delivered over channels:
// a line channel, an error channel, and a single completion event that
// is always the last thing emitted.
package supervise

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultGracePeriod is the fixed wait between the soft interrupt and
// the forced kill during Stop. It is supervisor policy, not a caller
// knob.
const DefaultGracePeriod = 450 * time.Millisecond

// Environment hints injected into every child so line-oriented
// streaming stays reliable.
var injectedEnv = map[string]string{
	"PYTHONUNBUFFERED": "1",
	"PYTHONIOENCODING": "utf-8",
}

// ErrBusy is returned by Start while a previous run is still active.
var ErrBusy = errors.New("supervise: a run is already active")

// ErrEmptyArgv is returned by Start for an empty argument vector.
var ErrEmptyArgv = errors.New("supervise: empty argument vector")

// Config tunes a Supervisor. The zero value is usable.
type Config struct {
	// Grace overrides DefaultGracePeriod when positive.
	Grace time.Duration
	// Logger receives supervisor diagnostics; defaults to slog.Default().
	Logger *slog.Logger
}

// Supervisor runs one argument vector at a time. It never queues: a
// second Start while a child is active returns ErrBusy.
type Supervisor struct {
	grace  time.Duration
	logger *slog.Logger
	term   terminator

	mu      sync.Mutex
	current *Run
}

// New creates a Supervisor.
func New(cfg Config) *Supervisor {
	grace := cfg.Grace
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		grace:  grace,
		logger: logger,
		term:   platformTerminator{},
	}
}

// StartOptions carries the optional spawn parameters.
type StartOptions struct {
	// Dir is the child's working directory; empty inherits the caller's.
	Dir string
	// Env entries override or extend the inherited environment.
	Env map[string]string
}

// Run is the live handle for one supervised child. It is exclusively
// owned by the supervisor that created it and is never reused after it
// reaches a terminal state.
type Run struct {
	// ID uniquely identifies this run in logs and events.
	ID string

	sup     *Supervisor
	queue   *lineQueue
	lines   chan Line
	errs    chan error
	done    chan Exit
	exited  chan struct{} // closed once the OS-level exit is observed
	flushed chan struct{} // closed once every line reached the channel

	mu            sync.Mutex
	state         State
	proc          *os.Process
	stopRequested bool // Stop arrived before the child existed
}

// Lines returns the ordered stream of merged output lines. The channel
// closes after the last line and before the completion event. Callers
// must drain it.
func (r *Run) Lines() <-chan Line { return r.lines }

// Errors returns asynchronous run errors (spawn failures, stream read
// errors). An error here never replaces the completion event; the
// channel closes once the completion event has been sent.
func (r *Run) Errors() <-chan error { return r.errs }

// Done returns the channel carrying the single completion event.
func (r *Run) Done() <-chan Exit { return r.done }

// State returns the run's current lifecycle state.
func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Run) setState(s State) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// Start spawns argv with stdout and stderr merged into a single stream
// and returns immediately. All waiting happens on background
// goroutines; results arrive through the returned Run's channels. Spawn
// failures are reported asynchronously: an error on Errors, then a
// completion event coded LaunchFailureCode.
func (s *Supervisor) Start(argv []string, opts StartOptions) (*Run, error) {
	if len(argv) == 0 {
		return nil, ErrEmptyArgv
	}

	s.mu.Lock()
	if s.current != nil {
		switch s.current.State() {
		case StateTerminated, StateFailed:
			// previous run finished; a fresh handle replaces it
		default:
			s.mu.Unlock()
			return nil, ErrBusy
		}
	}

	run := &Run{
		ID:      uuid.NewString(),
		sup:     s,
		queue:   newLineQueue(),
		lines:   make(chan Line),
		errs:    make(chan error, 2),
		done:    make(chan Exit, 1),
		exited:  make(chan struct{}),
		flushed: make(chan struct{}),
		state:   StateStarting,
	}
	s.current = run
	s.mu.Unlock()

	go run.flush()

	// #nosec G204 -- argv is the compiler's output for a user-declared tool.
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = opts.Dir
	cmd.Env = buildEnv(opts.Env)
	s.term.configure(cmd)

	pr, pw, err := os.Pipe()
	if err != nil {
		go run.failLaunch(err)
		return run, nil
	}
	// One pipe for both streams: the OS merges bytes in arrival order.
	cmd.Stdout = pw
	cmd.Stderr = pw

	go func() {
		if err := cmd.Start(); err != nil {
			_ = pw.Close()
			_ = pr.Close()
			run.failLaunch(err)
			return
		}
		// The child holds its own descriptor now.
		_ = pw.Close()

		r := run
		r.mu.Lock()
		r.proc = cmd.Process
		pending := r.stopRequested
		if !pending {
			r.state = StateRunning
		}
		r.mu.Unlock()
		s.logger.Debug("child started", "run_id", r.ID, "pid", cmd.Process.Pid, "argv0", argv[0])

		go r.pump(pr)
		if pending {
			// Stop arrived during the spawn window; honor it now.
			go r.terminate(cmd.Process)
		}

		waitErr := cmd.Wait()
		close(r.exited)

		code := exitCode(cmd, waitErr)

		// The completion event trails every line: wait for the pump to
		// drain the pipe and the flusher to empty the queue.
		<-r.flushed
		r.setState(StateTerminated)
		r.done <- Exit{Code: code}
		close(r.errs)
		s.logger.Debug("child exited", "run_id", r.ID, "exit_code", code)
	}()

	return run, nil
}

// failLaunch records a spawn failure: Failed state, error event, then
// the sentinel-coded completion event.
func (r *Run) failLaunch(err error) {
	r.setState(StateFailed)
	r.sup.logger.Error("launch failed", "run_id", r.ID, "error", err)
	r.errs <- err
	r.queue.finish()
	<-r.flushed
	r.done <- Exit{Code: LaunchFailureCode, Err: err}
	close(r.errs)
}

// pump splits the merged byte stream into Line events. It reads until
// EOF regardless of consumer pace; delivery goes through the queue so
// a slow consumer never blocks the pipe or exit detection.
func (r *Run) pump(pr *os.File) {
	defer pr.Close()

	reader := bufio.NewReader(pr)
	var seq uint64
	for {
		text, err := reader.ReadString('\n')
		if line := strings.TrimRight(text, "\r\n"); line != "" || err == nil {
			seq++
			r.queue.push(Line{Seq: seq, Text: line, Time: time.Now()})
		}
		if err != nil {
			if err != io.EOF {
				r.sup.logger.Warn("output stream read error", "run_id", r.ID, "error", err)
				select {
				case r.errs <- err:
				default:
				}
			}
			r.queue.finish()
			return
		}
	}
}

// flush forwards queued lines to the lines channel in order, then
// closes it so consumers see the stream end before the completion
// event.
func (r *Run) flush() {
	for {
		line, ok := r.queue.pop()
		if !ok {
			break
		}
		r.lines <- line
	}
	close(r.lines)
	close(r.flushed)
}

// Stop cancels the run cooperatively, then forcefully: a soft interrupt
// to the child's process group, the fixed grace period, then an
// unconditional kill if the child is still alive. Stop never fails;
// already-exited children and signal races count as success.
func (r *Run) Stop() {
	r.mu.Lock()
	switch r.state {
	case StateStarting:
		// No child yet; the spawn goroutine honors the request as soon
		// as the process exists.
		r.stopRequested = true
		r.state = StateStopping
		r.mu.Unlock()
		return
	case StateRunning:
		r.state = StateStopping
	default:
		r.mu.Unlock()
		return
	}
	proc := r.proc
	r.mu.Unlock()
	if proc == nil {
		return
	}
	r.terminate(proc)
}

// terminate runs the interrupt, grace, kill sequence against proc.
func (r *Run) terminate(proc *os.Process) {
	if err := r.sup.term.interrupt(proc); err != nil {
		r.sup.logger.Debug("soft interrupt failed", "run_id", r.ID, "error", err)
	}

	select {
	case <-r.exited:
		return
	case <-time.After(r.sup.grace):
	}

	if err := r.sup.term.kill(proc); err != nil {
		r.sup.logger.Debug("kill failed", "run_id", r.ID, "error", err)
	}
}

// Stop cancels the supervisor's active run, if any.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	run := s.current
	s.mu.Unlock()
	if run != nil {
		run.Stop()
	}
}

func buildEnv(overrides map[string]string) []string {
	env := os.Environ()
	for k, v := range injectedEnv {
		env = setEnv(env, k, v)
	}
	for k, v := range overrides {
		env = setEnv(env, k, v)
	}
	return env
}

func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
