//go:build !windows

package supervise

import (
	"os"
	"os/exec"
	"syscall"
)

// terminator is the per-OS termination strategy. The supervisor calls
// this interface and never branches on platform itself.
type terminator interface {
	configure(cmd *exec.Cmd)
	interrupt(p *os.Process) error
	kill(p *os.Process) error
}

// platformTerminator implements the POSIX strategy: the child leads its
// own process group so the soft interrupt and the kill reach any
// grandchildren it spawned.
type platformTerminator struct{}

func (platformTerminator) configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func (platformTerminator) interrupt(p *os.Process) error {
	return syscall.Kill(-p.Pid, syscall.SIGTERM)
}

func (platformTerminator) kill(p *os.Process) error {
	return syscall.Kill(-p.Pid, syscall.SIGKILL)
}

// exitCode extracts the child's exit code. Signal-terminated children
// report -int(signal), matching the convention the invoked tools
// already expect; LaunchFailureCode stays reserved for never-started
// processes.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	ps := cmd.ProcessState
	if ps == nil {
		if waitErr != nil {
			return LaunchFailureCode
		}
		return 0
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return ps.ExitCode()
}
