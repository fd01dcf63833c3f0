package execution

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startProcess(t *testing.T, command string) *Process {
	t.Helper()
	p := NewProcess(command, t.TempDir(), nil)
	require.NoError(t, p.Start())
	return p
}

func TestProcess_CapturesStdout(t *testing.T) {
	p := startProcess(t, "echo moo")

	require.NoError(t, p.Wait())
	assert.Equal(t, 0, p.ExitCode())
	assert.Equal(t, "moo\n", string(p.Stdout()))
	assert.Empty(t, p.Stderr())
}

func TestProcess_ShellQuoting(t *testing.T) {
	p := startProcess(t, `bash -c 'echo "a  b" >&2; exit 3'`)

	assert.Equal(t, 3, p.ExitCode())
	assert.Equal(t, "a  b\n", string(p.Stderr()))
}

func TestProcess_NonZeroExitIsNotAnError(t *testing.T) {
	p := startProcess(t, "grep")

	assert.NoError(t, p.Wait())
	assert.Equal(t, 2, p.ExitCode())
	assert.NotEmpty(t, p.Stderr())
}

func TestProcess_CapturesAreStable(t *testing.T) {
	p := startProcess(t, "echo moo")

	first := string(p.Stdout())
	second := string(p.Stdout())
	assert.Equal(t, first, second)
	assert.Equal(t, p.ExitCode(), p.ExitCode())
}

func TestProcess_ConcurrentWaitReapsOnce(t *testing.T) {
	p := startProcess(t, "bash -c 'sleep 0.2; echo done'")

	var wg sync.WaitGroup
	errs := make([]error, 16)
	codes := make([]int, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = p.Wait()
			codes[i] = p.ExitCode()
		}(i)
	}
	wg.Wait()

	for i := range errs {
		assert.NoError(t, errs[i])
		assert.Equal(t, 0, codes[i])
	}
	assert.Equal(t, 1, p.Waits())
	assert.Equal(t, "done\n", string(p.Stdout()))
}

func TestProcess_LargeOutputOnBothStreams(t *testing.T) {
	const size = 200 * 1024
	cmd := "bash -c 'head -c 204800 /dev/zero | tr \"\\0\" a; head -c 204800 /dev/zero | tr \"\\0\" b >&2'"
	p := startProcess(t, cmd)

	require.NoError(t, p.Wait())
	assert.Len(t, p.Stdout(), size)
	assert.Len(t, p.Stderr(), size)
	assert.Equal(t, strings.Repeat("b", 16), string(p.Stderr()[:16]))
}

func TestProcess_WaitBeforeStart(t *testing.T) {
	p := NewProcess("echo moo", t.TempDir(), nil)

	assert.ErrorIs(t, p.Wait(), ErrNotStarted)
	assert.Equal(t, -1, p.ExitCode())
	assert.Equal(t, 0, p.Waits())
}

func TestProcess_StartTwice(t *testing.T) {
	p := startProcess(t, "echo moo")
	assert.Error(t, p.Start())
}

func TestProcess_SpawnErrors(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	tests := []struct {
		name    string
		command string
		dir     string
	}{
		{name: "unknown executable", command: "definitely-not-a-command-pwt", dir: dir},
		{name: "empty command", command: "   ", dir: dir},
		{name: "unbalanced quote", command: "echo 'moo", dir: dir},
		{name: "missing directory", command: "echo moo", dir: filepath.Join(dir, "missing")},
		{name: "directory is a file", command: "echo moo", dir: file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProcess(tt.command, tt.dir, nil)
			err := p.Start()

			var spawnErr *SpawnError
			require.True(t, errors.As(err, &spawnErr), "expected SpawnError, got %v", err)
			assert.Equal(t, tt.command, spawnErr.Command)
			assert.Equal(t, err, p.Wait())
			assert.Equal(t, -1, p.ExitCode())
		})
	}
}

func TestProcess_WaitContextKillsProcessGroup(t *testing.T) {
	p := startProcess(t, "bash -c 'sleep 30 & sleep 30; wait'")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.WaitContext(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Equal(t, -9, p.ExitCode())
	assert.Equal(t, 1, p.Waits())
}

func TestProcess_WaitContextReturnsWhenDescendantHoldsPipes(t *testing.T) {
	if _, err := exec.LookPath("setsid"); err != nil {
		t.Skip("setsid not available")
	}
	// The sleeper leaves the process group and keeps stdout and stderr open.
	p := startProcess(t, "bash -c 'setsid sleep 5 & echo started'")

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := p.WaitContext(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "started\n", string(p.Stdout()))
	assert.Equal(t, 1, p.Waits())
}

func TestProcess_WaitContextCompletes(t *testing.T) {
	p := startProcess(t, "echo moo")

	require.NoError(t, p.WaitContext(context.Background()))
	assert.Equal(t, "moo\n", string(p.Stdout()))
}

func TestProcess_Environment(t *testing.T) {
	p := NewProcess("printenv PWT_TEST_VALUE", t.TempDir(), []string{"PATH=" + os.Getenv("PATH"), "PWT_TEST_VALUE=cow"})
	require.NoError(t, p.Start())

	assert.Equal(t, "cow\n", string(p.Stdout()))
}

func TestProcess_RunsInDir(t *testing.T) {
	dir := t.TempDir()
	p := NewProcess("bash -c 'echo moo > moo.txt'", dir, nil)
	require.NoError(t, p.Start())
	require.NoError(t, p.Wait())

	assert.FileExists(t, filepath.Join(dir, "moo.txt"))
}

func TestProcess_WriteLogs(t *testing.T) {
	p := startProcess(t, "bash -c 'echo out; echo err >&2'")
	dir := t.TempDir()

	stdoutPath, stderrPath, err := p.WriteLogs(dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "log.out"), stdoutPath)
	assert.Equal(t, filepath.Join(dir, "log.err"), stderrPath)

	out, err := os.ReadFile(stdoutPath)
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out))

	errOut, err := os.ReadFile(stderrPath)
	require.NoError(t, err)
	assert.Equal(t, "err\n", string(errOut))
}
