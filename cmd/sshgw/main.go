package main

import (
	"os"

	"github.com/bnema/sshgw/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
