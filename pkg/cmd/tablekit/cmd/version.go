package cmd

import (
	"fmt"

	"github.com/segmentio/cli"

	"github.com/bigmb/tablekit"
)

// cliVersion represents the version command
var cliVersion = &cli.CommandFunc{
	Help: "Print the tablekit version",
	Func: func() error {
		fmt.Println(tablekit.Version)
		return nil
	},
}
