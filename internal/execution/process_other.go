//go:build !unix

package execution

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}

func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}
