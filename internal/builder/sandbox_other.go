//go:build !linux

package builder

import "os/exec"

// applySandbox on non-Linux platforms has nothing to attach for
// BackendNative — Linux namespaces don't exist here — so New forces
// BackendContainer outside Linux (see New) and this is a no-op either way.
// No container runtime is invoked either, so builds on these platforms run
// without isolation, and nothing in the builder refuses a build when
// neither backend is available.
func applySandbox(cmd *exec.Cmd, backend Backend, fixedOutput bool) {}
