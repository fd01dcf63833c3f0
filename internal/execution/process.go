package execution

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/shlex"
)

// killDrainDelay bounds how long a killed process's pipes are drained. A
// descendant that left the process group can hold them open indefinitely.
const killDrainDelay = 250 * time.Millisecond

// ErrNotStarted is returned when waiting on a process that was never started.
var ErrNotStarted = errors.New("process not started")

// SpawnError is returned when a command cannot be launched.
type SpawnError struct {
	Command string
	Dir     string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start command '%s' in '%s': %v", e.Command, e.Dir, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Process owns the lifecycle of one external command: spawn, output capture,
// wait and exit code. It is single-use.
//
// stdout and stderr are drained by goroutines started together with the
// process, so a command filling one pipe never blocks on the other. Wait
// reaps the process exactly once; every caller observes the same result.
// After Kill the pipes are closed once killDrainDelay has passed, so Wait
// returns even when an escaped descendant still holds them.
type Process struct {
	command string
	dir     string
	env     []string

	mu       sync.Mutex
	cmd      *exec.Cmd
	started  bool
	startErr error

	drained sync.WaitGroup
	pipes   []*os.File
	stdout  bytes.Buffer
	stderr  bytes.Buffer

	killOnce sync.Once
	killed   chan struct{}

	waitOnce sync.Once
	exitCode int
	waitErr  error
	waits    atomic.Int32
}

// NewProcess creates a process for command, to be run in dir.
// A nil env inherits the current environment.
func NewProcess(command, dir string, env []string) *Process {
	return &Process{
		command:  command,
		dir:      dir,
		env:      env,
		exitCode: -1,
		killed:   make(chan struct{}),
	}
}

// Command returns the command as given.
func (p *Process) Command() string {
	return p.command
}

// Dir returns the working directory.
func (p *Process) Dir() string {
	return p.dir
}

// Start tokenizes the command with shell quoting rules and executes it
// directly, without a shell.
func (p *Process) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return fmt.Errorf("process '%s' already started", p.command)
	}
	p.started = true

	if err := p.spawn(); err != nil {
		p.startErr = err
		return err
	}
	return nil
}

func (p *Process) spawn() error {
	args, err := shlex.Split(p.command)
	if err != nil {
		return p.spawnError(fmt.Errorf("tokenize command: %w", err))
	}
	if len(args) == 0 {
		return p.spawnError(errors.New("empty command"))
	}

	info, err := os.Stat(p.dir)
	if err != nil {
		return p.spawnError(fmt.Errorf("working directory: %w", err))
	}
	if !info.IsDir() {
		return p.spawnError(fmt.Errorf("working directory %s is not a directory", p.dir))
	}

	cmd := exec.Command(args[0], args[1:]...) // #nosec G204 -- commands come from the user's own test files
	cmd.Dir = p.dir
	cmd.Env = p.env
	setProcessGroup(cmd)

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return p.spawnError(fmt.Errorf("create stdout pipe: %w", err))
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return p.spawnError(fmt.Errorf("create stderr pipe: %w", err))
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	err = cmd.Start()
	// The child holds its own copies of the write ends.
	closeAll(stdoutW, stderrW)
	if err != nil {
		closeAll(stdoutR, stderrR)
		return p.spawnError(err)
	}
	p.cmd = cmd
	p.pipes = []*os.File{stdoutR, stderrR}

	p.drained.Add(2)
	go p.drain(&p.stdout, stdoutR)
	go p.drain(&p.stderr, stderrR)

	return nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func (p *Process) spawnError(err error) *SpawnError {
	return &SpawnError{Command: p.command, Dir: p.dir, Err: err}
}

// drain copies one pipe into its buffer until EOF.
// Read errors after a kill are expected and leave what was captured so far.
func (p *Process) drain(dst *bytes.Buffer, src io.ReadCloser) {
	defer p.drained.Done()
	_, _ = io.Copy(dst, src)
	_ = src.Close()
}

// Wait blocks until the process has exited and both pipes are fully drained.
// It is idempotent and safe for concurrent callers. A non-zero exit code is
// not an error.
func (p *Process) Wait() error {
	p.mu.Lock()
	started, startErr := p.started, p.startErr
	p.mu.Unlock()

	if !started {
		return ErrNotStarted
	}
	if startErr != nil {
		return startErr
	}

	p.waitOnce.Do(p.reap)
	return p.waitErr
}

func (p *Process) reap() {
	p.waits.Add(1)

	err := p.cmd.Wait()
	p.waitDrained()

	if p.cmd.ProcessState != nil {
		p.exitCode = exitCode(p.cmd.ProcessState)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		p.waitErr = fmt.Errorf("wait for '%s': %w", p.command, err)
	}
}

// waitDrained waits for both pipes to reach EOF. Once the process was killed
// it waits at most killDrainDelay before closing them.
func (p *Process) waitDrained() {
	done := make(chan struct{})
	go func() {
		p.drained.Wait()
		close(done)
	}()

	select {
	case <-done:
		return
	case <-p.killed:
	}
	select {
	case <-done:
	case <-time.After(killDrainDelay):
		closeAll(p.pipes...)
		<-done
	}
}

// WaitContext is Wait with a caller-side deadline. When ctx is done first the
// whole process group is killed, the pending Wait completes, and ctx.Err()
// is returned.
func (p *Process) WaitContext(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		done <- p.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = p.Kill()
		<-done
		return ctx.Err()
	}
}

// Kill forcibly terminates the process and everything in its process group.
func (p *Process) Kill() error {
	p.mu.Lock()
	cmd := p.cmd
	p.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return ErrNotStarted
	}
	err := killProcessGroup(cmd)
	p.killOnce.Do(func() { close(p.killed) })
	return err
}

// ExitCode waits for the process and returns its exit code.
// It is -1 when the process never ran, and -N when it was killed by signal N.
func (p *Process) ExitCode() int {
	_ = p.Wait()
	return p.exitCode
}

// Stdout waits for the process and returns everything it wrote to stdout.
func (p *Process) Stdout() []byte {
	_ = p.Wait()
	return p.stdout.Bytes()
}

// Stderr waits for the process and returns everything it wrote to stderr.
func (p *Process) Stderr() []byte {
	_ = p.Wait()
	return p.stderr.Bytes()
}

// Waits returns how many times the process was actually reaped: 0 or 1.
func (p *Process) Waits() int {
	return int(p.waits.Load())
}

// WriteLogs writes the captured streams verbatim to log.out and log.err in dir.
func (p *Process) WriteLogs(dir string) (stdoutPath, stderrPath string, err error) {
	stdoutPath = filepath.Join(dir, "log.out")
	stderrPath = filepath.Join(dir, "log.err")

	if err := os.WriteFile(stdoutPath, p.Stdout(), 0644); err != nil {
		return "", "", fmt.Errorf("write stdout log: %w", err)
	}
	if err := os.WriteFile(stderrPath, p.Stderr(), 0644); err != nil {
		return "", "", fmt.Errorf("write stderr log: %w", err)
	}
	return stdoutPath, stderrPath, nil
}
