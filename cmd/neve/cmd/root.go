// Package cmd is the cobra command tree for the neve CLI: a thin shell
// over the core, built on a persistent-flag/init() registration shape
// with one RunE-based subcommand per operation — eval, run, check,
// build, repl, store gc/info, config build/switch/rollback/list,
// package install/remove/list — each a thin wrapper over
// pkg/neve.Engine or internal/store.Store.
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neve-lang/neve/internal/builder"
	"github.com/neve-lang/neve/internal/config"
	"github.com/neve-lang/neve/internal/fetch"
	"github.com/neve-lang/neve/internal/store"
	"github.com/neve-lang/neve/internal/stdlib"
	"github.com/neve-lang/neve/pkg/neve"
)

var (
	// Version is set by build flags; BuildDate/GitCommit back `neve
	// --version`.
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"

	manifestPath string
	verbose      bool
	noColor      bool

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "neve",
	Short:   "Neve: a pure functional language for declarative system configuration",
	Version: Version,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		loaded, err := config.Load(manifestPath)
		if err != nil {
			return internalErr(err)
		}
		if noColor {
			loaded.NoColor = true
		}
		cfg = loaded

		zc := zap.NewProductionConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		l, err := zc.Build()
		if err != nil {
			return internalErr(err)
		}
		log = l
		return nil
	},
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&manifestPath, "config", "", "path to a YAML runtime-config override file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored diagnostic output (also: NO_COLOR)")
}

// cliError carries the process exit code assigned to each error class:
// 1 for user error (bad input, failed build, type error), 2 for
// internal error, 64 for CLI usage error. A bare error from anywhere
// else in the tree defaults to 2 in ExecuteAndExit.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func usageErr(format string, args ...any) error { return &cliError{code: 64, err: fmt.Errorf(format, args...)} }

func userErr(err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: 1, err: err}
}

func internalErr(err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: 2, err: err}
}

// ExecuteAndExit runs the command tree and returns the process exit
// code.
func ExecuteAndExit() int {
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintln(os.Stderr, "neve:", err)
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	return 2
}

// newStore opens the configured store, creating its directory layout if
// this is the first run against that root.
func newStore() (*store.Store, error) {
	st, err := store.New(cfg.StoreDir, log)
	if err != nil {
		return nil, internalErr(err)
	}
	return st, nil
}

// newRuntime bundles a store/builder/fetcher for commands that evaluate
// derivation-aware Neve source (everything but `check`/`fmt`).
func newRuntime() (*stdlib.Runtime, error) {
	st, err := newStore()
	if err != nil {
		return nil, err
	}
	opts := builder.DefaultOptions()
	opts.Backend = builder.Backend(cfg.Backend)
	if cfg.BuildJobs > 0 {
		opts.MaxJobs = cfg.BuildJobs
	}
	opts.KeepFailed = cfg.KeepFailed
	b := builder.New(st, opts, log)
	f := fetch.New(st, log)
	return &stdlib.Runtime{Store: st, Builder: b, Fetch: f}, nil
}

// newEngine builds a pkg/neve.Engine wired to a live Runtime.
func newEngine() (*neve.Engine, error) {
	rt, err := newRuntime()
	if err != nil {
		return nil, err
	}
	return neve.New(rt, !cfg.NoColor), nil
}

// printDiagnostics writes a compiled Engine call's rendered diagnostics
// to stderr, if any were produced.
func printDiagnostics(d *neve.Diagnostics) {
	if d != nil && d.Rendered != "" {
		fmt.Fprint(os.Stderr, d.Rendered)
	}
}
