package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neve-lang/neve/internal/eval"
)

var runEntry string

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Evaluate a file, print the last expression's value",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		filename := args[0]
		src, err := os.ReadFile(filename)
		if err != nil {
			return userErr(fmt.Errorf("run: %w", err))
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		v, diags, err := eng.Run(filename, string(src), runEntry)
		printDiagnostics(diags)
		if err != nil {
			if diags != nil && diags.HasError {
				return userErr(err)
			}
			return internalErr(err)
		}
		fmt.Println(eval.Show(v))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runEntry, "entry", "main", "top-level binding to evaluate and print")
	rootCmd.AddCommand(runCmd)
}
