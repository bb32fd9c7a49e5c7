// Command neve is the CLI front end over pkg/neve and the derivation/
// store/builder/fetch subsystem.
package main

import (
	"os"

	"github.com/neve-lang/neve/cmd/neve/cmd"
)

func main() {
	os.Exit(cmd.ExecuteAndExit())
}
