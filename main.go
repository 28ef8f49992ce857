package main

import (
	"fmt"
	"os"

	"github.com/sadopc/sleepreset/cmd"
)

var (
	version string
	commit  string
	date    string
)

func main() {
	err := cmd.Execute(os.Args, cmd.BuildArgs{
		Version: version,
		Commit:  commit,
		Date:    date,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "sleepreset: %v\n", err)
		os.Exit(1)
	}
}
