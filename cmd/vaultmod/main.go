package main

import (
	"os"

	"github.com/psantana5/vaultmod/cmd/vaultmod/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
