package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/neve-lang/neve/internal/eval"
	"github.com/neve-lang/neve/pkg/neve"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive read-eval-print loop",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		return internalErr(runRepl(eng, c.InOrStdin(), c.OutOrStdout()))
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// replSession holds the state one `:load` builds up: the watched file, so
// `:load` can be reissued implicitly on every write to it, and the watcher
// itself, torn down when a different file is loaded or the session ends.
type replSession struct {
	eng     *neve.Engine
	out     *bufio.Writer
	loaded  string
	watcher *fsnotify.Watcher
}

// runRepl drives the `:help`/`:env`/`:load`/`:clear`/`:quit` meta-command
// loop over eng's Eval, one line at a time. Reading the next line blocks on
// its own goroutine so a write to a `:load`-ed file can interrupt the
// prompt and re-check it immediately, without waiting for the user to
// press enter.
func runRepl(eng *neve.Engine, in io.Reader, w io.Writer) error {
	out := bufio.NewWriter(w)
	defer out.Flush()

	sess := &replSession{eng: eng, out: out}
	defer sess.stopWatch()

	reload := make(chan struct{}, 1)
	scanner := bufio.NewScanner(in)

	// A single long-lived goroutine owns the scanner for the session's
	// whole lifetime: scanner.Scan() is not safe to call from more than
	// one goroutine, so each line read must wait for the previous one
	// to be consumed before asking for the next.
	lineCh := make(chan string)
	errCh := make(chan error, 1)
	go func() {
		for scanner.Scan() {
			lineCh <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			errCh <- err
			return
		}
		errCh <- errQuit
	}()

	fmt.Fprintln(out, "neve repl — :help for meta-commands, :quit to exit")
	out.Flush()

	for {
		fmt.Fprint(out, "neve> ")
		out.Flush()

		select {
		case <-reload:
			sess.recheck()
			out.Flush()
			continue
		case err := <-errCh:
			if err == errQuit {
				return nil
			}
			return err
		case line := <-lineCh:
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, ":") {
				if quit := sess.meta(line, reload); quit {
					return nil
				}
				continue
			}
			sess.evalLine(line)
		}
	}
}

var errQuit = fmt.Errorf("repl: eof")

func (s *replSession) evalLine(line string) {
	v, diags, err := s.eng.Eval(line)
	if diags != nil && diags.Rendered != "" {
		fmt.Fprint(s.out, diags.Rendered)
	}
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		s.out.Flush()
		return
	}
	fmt.Fprintln(s.out, eval.Show(v))
	s.out.Flush()
}

func (s *replSession) meta(line string, reload chan<- struct{}) (quit bool) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":quit", ":q":
		return true
	case ":help", ":h":
		fmt.Fprintln(s.out, ":help            show this message")
		fmt.Fprintln(s.out, ":env             report the currently loaded/watched file, if any")
		fmt.Fprintln(s.out, ":load FILE       load FILE and watch it for changes")
		fmt.Fprintln(s.out, ":clear           unload the current file and stop watching it")
		fmt.Fprintln(s.out, ":quit            exit")
	case ":env":
		if s.loaded == "" {
			fmt.Fprintln(s.out, "(no file loaded)")
			break
		}
		watched := "not watched"
		if s.watcher != nil {
			watched = "watched for changes"
		}
		fmt.Fprintf(s.out, "loaded: %s (%s)\n", s.loaded, watched)
	case ":load":
		if len(fields) != 2 {
			fmt.Fprintln(s.out, "usage: :load FILE")
			break
		}
		s.load(fields[1], reload)
	case ":clear":
		s.stopWatch()
		s.loaded = ""
		fmt.Fprintln(s.out, "(cleared)")
	default:
		fmt.Fprintf(s.out, "unknown meta-command %q (try :help)\n", fields[0])
	}
	s.out.Flush()
	return false
}

// load reads path once to surface parse/type errors immediately, then
// starts watching it so a later write re-triggers that same check without
// the user retyping `:load`.
func (s *replSession) load(path string, reload chan<- struct{}) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	diags, evalErr := s.eng.Check(path, string(src))
	if diags != nil && diags.Rendered != "" {
		fmt.Fprint(s.out, diags.Rendered)
	}
	if evalErr != nil {
		fmt.Fprintln(s.out, "error:", evalErr)
	}

	s.stopWatch()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintln(s.out, "warning: file watching unavailable:", err)
		s.loaded = path
		return
	}
	if err := watcher.Add(path); err != nil {
		fmt.Fprintln(s.out, "warning: could not watch", path+":", err)
		watcher.Close()
		s.loaded = path
		return
	}
	s.watcher = watcher
	s.loaded = path

	go func() {
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					select {
					case reload <- struct{}{}:
					default:
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	fmt.Fprintln(s.out, "loaded and watching", path)
}

// recheck re-parses and re-type-checks the loaded file after a write event,
// reporting fresh diagnostics without requiring the user to retype
// `:load`.
func (s *replSession) recheck() {
	src, err := os.ReadFile(s.loaded)
	if err != nil {
		fmt.Fprintln(s.out, "error:", err)
		return
	}
	diags, evalErr := s.eng.Check(s.loaded, string(src))
	if diags != nil && diags.Rendered != "" {
		fmt.Fprint(s.out, diags.Rendered)
	}
	if evalErr != nil {
		fmt.Fprintln(s.out, "error:", evalErr)
		return
	}
	fmt.Fprintf(s.out, "(reloaded %s: ok)\n", s.loaded)
}

func (s *replSession) stopWatch() {
	if s.watcher != nil {
		s.watcher.Close()
		s.watcher = nil
	}
}
