package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neve-lang/neve/internal/eval"
)

// gcRootPrefix namespaces package installs inside var/gcroots, keeping
// them apart from roots declared by hand or by builds.
const gcRootPrefix = "pkg-"

var packagesFile string

var packageCmd = &cobra.Command{
	Use:   "package",
	Short: "Install, remove, and list user packages",
}

var packageInstallCmd = &cobra.Command{
	Use:   "install NAME",
	Short: "Build NAME from the packages file and pin it as installed",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		name := args[0]
		src, err := os.ReadFile(packagesFile)
		if err != nil {
			return userErr(fmt.Errorf("package install: %w", err))
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		v, diags, err := eng.Run(packagesFile, string(src), name)
		printDiagnostics(diags)
		if err != nil {
			if diags != nil && diags.HasError {
				return userErr(err)
			}
			return internalErr(err)
		}
		drv, ok := v.(*eval.Derivation)
		if !ok {
			return userErr(fmt.Errorf("package install: %q evaluates to a %s, not a derivation", name, v.Type()))
		}
		out, err := drv.OutPath()
		if err != nil {
			return internalErr(err)
		}
		st, err := newStore()
		if err != nil {
			return err
		}
		root := string(out)
		if err := st.AddGCRoot(gcRootPrefix+name, root); err != nil {
			return internalErr(err)
		}
		fmt.Printf("installed %s -> %s\n", name, root)
		return nil
	},
}

var packageRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Unpin an installed package (the store path becomes collectible)",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		st, err := newStore()
		if err != nil {
			return err
		}
		if err := st.RemoveGCRoot(gcRootPrefix + args[0]); err != nil {
			if os.IsNotExist(err) {
				return userErr(fmt.Errorf("package remove: %q is not installed", args[0]))
			}
			return internalErr(err)
		}
		fmt.Printf("removed %s\n", args[0])
		return nil
	},
}

var packageListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, args []string) error {
		st, err := newStore()
		if err != nil {
			return err
		}
		roots, err := st.ListGCRoots()
		if err != nil {
			return internalErr(err)
		}
		for _, r := range roots {
			if !strings.HasPrefix(r.ID, gcRootPrefix) {
				continue
			}
			fmt.Printf("%-24s %s\n", strings.TrimPrefix(r.ID, gcRootPrefix), r.Target)
		}
		return nil
	},
}

func init() {
	packageInstallCmd.Flags().StringVar(&packagesFile, "file", "packages.neve", "Neve module whose top-level bindings name installable packages")
	packageCmd.AddCommand(packageInstallCmd, packageRemoveCmd, packageListCmd)
	rootCmd.AddCommand(packageCmd)
}
