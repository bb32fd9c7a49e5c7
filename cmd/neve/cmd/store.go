package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect or garbage-collect the content-addressed store",
}

var storeGCWatch bool

var storeGCCmd = &cobra.Command{
	Use:   "gc",
	Short: "Garbage-collect unreachable store paths",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		st, err := newStore()
		if err != nil {
			return err
		}
		runGC := func() error {
			removed, err := st.GC(nil)
			if err != nil {
				return internalErr(err)
			}
			for _, p := range removed {
				fmt.Println(p)
			}
			fmt.Fprintf(c.ErrOrStderr(), "%d path(s) removed\n", len(removed))
			return nil
		}
		if !storeGCWatch {
			return runGC()
		}
		return internalErr(watchAndGC(cfg.StoreDir, c.ErrOrStderr(), runGC))
	},
}

// watchAndGC re-runs gc every time a root is added to or removed from
// root's var/gcroots directory, until interrupted. A root disappearing
// (a generation rolled back, a build's GC root released) can make paths
// collectible just as much as a new root can make them live, so both
// create and remove events trigger a pass.
func watchAndGC(root string, errOut io.Writer, runGC func() error) error {
	gcroots := filepath.Join(root, "var/gcroots")
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store gc --watch: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(gcroots); err != nil {
		return fmt.Errorf("store gc --watch: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)

	fmt.Fprintf(errOut, "watching %s, ctrl-C to stop\n", gcroots)
	if err := runGC(); err != nil {
		return err
	}
	for {
		select {
		case <-sig:
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("store gc --watch: %w", err)
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := runGC(); err != nil {
				return err
			}
		}
	}
}

var storeInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Report store usage",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		st, err := newStore()
		if err != nil {
			return err
		}
		paths, err := st.AllStorePaths()
		if err != nil {
			return internalErr(err)
		}
		gens, err := st.ListGenerations()
		if err != nil {
			return internalErr(err)
		}
		fmt.Printf("store root: %s\n", cfg.StoreDir)
		fmt.Printf("paths: %d\n", len(paths))
		fmt.Printf("generations: %d\n", len(gens))
		return nil
	},
}

func init() {
	storeGCCmd.Flags().BoolVar(&storeGCWatch, "watch", false, "keep running, re-collecting whenever a GC root is added or removed")
	storeCmd.AddCommand(storeGCCmd, storeInfoCmd)
	rootCmd.AddCommand(storeCmd)
}
