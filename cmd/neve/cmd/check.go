package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Type-check only; no output on success",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		filename := args[0]
		src, err := os.ReadFile(filename)
		if err != nil {
			return userErr(err)
		}
		eng, err := newEngine()
		if err != nil {
			return err
		}
		diags, err := eng.Check(filename, string(src))
		if err != nil {
			return internalErr(err)
		}
		printDiagnostics(diags)
		if diags.HasError {
			return userErr(errCheckFailed)
		}
		return nil
	},
}

var errCheckFailed = checkFailedError{}

type checkFailedError struct{}

func (checkFailedError) Error() string { return "type-checking found errors" }

func init() {
	rootCmd.AddCommand(checkCmd)
}
