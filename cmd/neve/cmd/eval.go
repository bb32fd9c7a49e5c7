package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neve-lang/neve/internal/eval"
)

var evalCmd = &cobra.Command{
	Use:   "eval EXPR",
	Short: "Parse, type-check, and evaluate a single expression",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		v, diags, err := eng.Eval(args[0])
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
	rootCmd.AddCommand(evalCmd)
}
