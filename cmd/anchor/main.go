package main

import (
	"os"

	"github.com/dropanchor/anchor-go/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
