package main

import (
	"os"

	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/cli"
	"github.com/Hams-Ollo/Genesis-Protocol-Developer-Kit/internal/errors"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}
