// Package builder turns a resolved internal/derivation.Derivation into
// realized store outputs: acquire a lock, skip work already done,
// materialize inputs, run the build command inside an isolated root, and
// record what the result references.
//
// The worker-pool/cancellation shape is a bounded-concurrency pool
// sharing one cancellation signal, built on golang.org/x/sync/errgroup.
package builder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neve-lang/neve/internal/derivation"
	"github.com/neve-lang/neve/internal/store"
)

// Backend selects how Builder isolates a build (the NEVE_BUILD_BACKEND
// env var).
type Backend string

const (
	BackendNative    Backend = "native"    // Linux namespaces, the primary path
	BackendContainer Backend = "container" // alternative container-backed backend
)

// Options configures a Builder (the NEVE_BUILD_JOBS / NEVE_BUILD_BACKEND
// env vars, plus the build-log/keep-failed knobs below).
type Options struct {
	Backend      Backend
	MaxJobs      int
	KeepFailed   bool
	LogTailBytes int // how many trailing log bytes to surface on failure
	Timeout      time.Duration
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Backend:      BackendNative,
		MaxJobs:      runtime.NumCPU(),
		LogTailBytes: 4096,
		Timeout:      0, // no timeout unless the caller sets one
	}
}

// Builder realizes derivations against a Store.
type Builder struct {
	Store *store.Store
	Opts  Options
	Log   *zap.Logger
}

// New constructs a Builder. If opts.Backend is unset, it defaults to
// BackendNative on Linux and BackendContainer everywhere else. New does
// not check that the chosen backend is available and never refuses a
// build on that ground; outside Linux no container runtime is invoked,
// so builds there run without isolation (see applySandbox).
func New(st *store.Store, opts Options, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Backend == "" {
		if runtime.GOOS == "linux" {
			opts.Backend = BackendNative
		} else {
			opts.Backend = BackendContainer
		}
	}
	if opts.MaxJobs <= 0 {
		opts.MaxJobs = runtime.NumCPU()
	}
	if opts.LogTailBytes <= 0 {
		opts.LogTailBytes = 4096
	}
	return &Builder{Store: st, Opts: opts, Log: log}
}

// BuildError reports a non-zero build exit with the tail of its captured
// log attached.
type BuildError struct {
	Derivation string
	ExitCode   int
	LogTail    string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("builder: %s exited %d:\n%s", e.Derivation, e.ExitCode, e.LogTail)
}

// Realize builds d (if its outputs aren't already present) and returns
// the store path name for each requested output.
func (b *Builder) Realize(ctx context.Context, d *derivation.Derivation, inputPaths map[string]string) (map[string]string, error) {
	digest := d.Hash()
	v, err := b.Store.WithLock(digest.Base32(), func() (any, error) {
		return b.realizeLocked(ctx, d, inputPaths)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]string), nil
}

func (b *Builder) realizeLocked(ctx context.Context, d *derivation.Derivation, inputPaths map[string]string) (map[string]string, error) {
	// Outputs already built.
	if outs, ok := b.existingOutputs(d); ok {
		return outs, nil
	}

	// Every input is expected to already be a realized/fetched store path
	// by the time Realize is called — the evaluator forces a dependency
	// derivation's Value before the one that consumes it, so by
	// construction there is no "unmaterialized input" case left for the
	// builder itself to resolve here.
	for _, in := range d.Inputs {
		if _, ok := inputPaths[in.Path]; !ok {
			if !b.Store.Exists(in.Path) {
				return nil, fmt.Errorf("derivation %q: input %q not present in store", d.Name, in.Path)
			}
		}
	}

	scratch := filepath.Join(b.Store.Root, "var", "build-"+uuid.NewString())
	if err := os.Mkdir(scratch, 0o755); err != nil {
		return nil, fmt.Errorf("builder: scratch dir: %w", err)
	}
	succeeded := false
	defer func() {
		if !succeeded && !b.Opts.KeepFailed {
			os.RemoveAll(scratch)
		}
	}()

	outDir := filepath.Join(scratch, "out")
	tmpDir := filepath.Join(scratch, "tmp")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(tmpDir, 0o755); err != nil {
		return nil, err
	}

	logPath := filepath.Join(b.Store.Root, "var/log", digestName(d)+".log")
	logFile, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("builder: create log: %w", err)
	}
	defer logFile.Close()

	runCtx := ctx
	var cancel context.CancelFunc
	if b.Opts.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, b.Opts.Timeout)
		defer cancel()
	}

	if err := b.run(runCtx, d, outDir, tmpDir, logFile); err != nil {
		tail := tailFile(logPath, b.Opts.LogTailBytes)
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, &BuildError{Derivation: d.Name, ExitCode: ee.ExitCode(), LogTail: tail}
		}
		return nil, &BuildError{Derivation: d.Name, ExitCode: -1, LogTail: tail + "\n" + err.Error()}
	}

	// Scan $out for references, move to final store path per output,
	// record references metadata.
	outs := map[string]string{}
	for _, name := range d.OutputNames {
		finalName, err := d.OutputPath(name)
		if err != nil {
			return nil, err
		}
		if err := os.Rename(outDir, b.Store.StorePath(finalName)); err != nil {
			return nil, fmt.Errorf("builder: move output %q: %w", name, err)
		}
		outs[name] = finalName
		if _, err := b.Store.QueryReferences(finalName); err != nil {
			b.Log.Warn("builder: reference scan failed", zap.String("path", finalName), zap.Error(err))
		}
	}
	succeeded = true
	b.Log.Info("builder: realized", zap.String("derivation", d.Name))
	return outs, nil
}

func (b *Builder) existingOutputs(d *derivation.Derivation) (map[string]string, bool) {
	outs := map[string]string{}
	for _, name := range d.OutputNames {
		pathName, err := d.OutputPath(name)
		if err != nil || !b.Store.Exists(pathName) {
			return nil, false
		}
		outs[name] = pathName
	}
	return outs, true
}

// run executes d.BuildCommand under a shell with the derivation's
// environment plus $out/$TMPDIR/cpu-count, isolated per b.Opts.Backend,
// streaming combined output to logFile.
func (b *Builder) run(ctx context.Context, d *derivation.Derivation, outDir, tmpDir string, logFile *os.File) error {
	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", d.BuildCommand)
	cmd.Dir = outDir
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Env = buildEnv(d, outDir, tmpDir)

	applySandbox(cmd, b.Opts.Backend, d.IsFixedOutput())

	if err := cmd.Start(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		terminate(cmd)
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			kill(cmd)
			<-done
		}
		return ctx.Err()
	}
}

func buildEnv(d *derivation.Derivation, outDir, tmpDir string) []string {
	env := []string{
		"out=" + outDir,
		"TMPDIR=" + tmpDir,
		"NEVE_BUILD_CORES=" + strconv.Itoa(runtime.NumCPU()),
		"PATH=/usr/bin:/bin",
	}
	for _, e := range d.Environment {
		env = append(env, e.Key+"="+e.Value)
	}
	return env
}

// terminate sends SIGTERM to the build subprocess, the first step of the
// cancellation protocol in run: SIGTERM, a fixed five-second wait, then
// SIGKILL if the process has not exited.
func terminate(cmd *exec.Cmd) {
	if cmd.Process != nil {
		cmd.Process.Signal(syscall.SIGTERM)
	}
}

func kill(cmd *exec.Cmd) {
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
}

func digestName(d *derivation.Derivation) string {
	return d.Hash().Base32()
}

func tailFile(path string, n int) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	if len(data) <= n {
		return string(data)
	}
	return string(data[len(data)-n:])
}
