//go:build linux

package builder

import (
	"os/exec"
	"syscall"
)

// applySandbox isolates a native-backend build in its own PID/mount/UTS/IPC
// namespace and network namespace: the build runs in its own mount, PID,
// UTS, IPC, and — unless fixed-output — network namespace. Fixed-output
// derivations keep the host network namespace so fetches can reach the
// network; network access is otherwise permitted only for fixed-output
// derivations.
func applySandbox(cmd *exec.Cmd, backend Backend, fixedOutput bool) {
	if backend != BackendNative {
		return
	}
	flags := syscall.CLONE_NEWNS | syscall.CLONE_NEWPID | syscall.CLONE_NEWUTS | syscall.CLONE_NEWIPC
	if !fixedOutput {
		flags |= syscall.CLONE_NEWNET
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags:   uintptr(flags),
		Unshareflags: syscall.CLONE_NEWNS,
	}
}
