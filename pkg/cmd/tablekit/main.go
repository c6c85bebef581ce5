package main

import (
	"github.com/bigmb/tablekit/pkg/cmd/tablekit/cmd"
)

func main() {
	cmd.Execute()
}
