//go:build windows

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

// platformTerminator implements the Windows strategy: the child gets
// its own console process group so a CTRL_BREAK event can reach it
// without interrupting the supervisor's own console.
type platformTerminator struct{}

func (platformTerminator) configure(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}

func (platformTerminator) interrupt(p *os.Process) error {
	return sendCtrlBreak(p.Pid)
}

func (platformTerminator) kill(p *os.Process) error {
	return p.Kill()
}

func sendCtrlBreak(pid int) error {
	dll, err := syscall.LoadDLL("kernel32.dll")
	if err != nil {
		return err
	}
	proc, err := dll.FindProc("GenerateConsoleCtrlEvent")
	if err != nil {
		return err
	}
	r, _, err := proc.Call(syscall.CTRL_BREAK_EVENT, uintptr(pid))
	if r == 0 {
		return err
	}
	return nil
}

// exitCode extracts the child's exit code; Windows has no signal exit
// convention, so the raw code is reported as-is.
func exitCode(cmd *exec.Cmd, waitErr error) int {
	ps := cmd.ProcessState
	if ps == nil {
		if waitErr != nil {
			return LaunchFailureCode
		}
		return 0
	}
	return ps.ExitCode()
}
