package main

import (
	"os"

	"github.com/bosocmputer/pharmacist_assistant/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
