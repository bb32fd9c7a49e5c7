package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neve-lang/neve/internal/eval"
)

var buildEntry string

var buildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "Evaluate FILE to a derivation and realize it",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		filename := args[0]
		src, err := os.ReadFile(filename)
		if err != nil {
			return userErr(fmt.Errorf("build: %w", err))
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		v, diags, err := eng.Run(filename, string(src), buildEntry)
		printDiagnostics(diags)
		if err != nil {
			if diags != nil && diags.HasError {
				return userErr(err)
			}
			return internalErr(err)
		}
		drv, ok := v.(*eval.Derivation)
		if !ok {
			return userErr(fmt.Errorf("build: %q evaluates to a %s, not a derivation", buildEntry, v.Type()))
		}
		out, err := drv.OutPath()
		if err != nil {
			return internalErr(err)
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildEntry, "entry", "main", "top-level binding to build")
	rootCmd.AddCommand(buildCmd)
}
