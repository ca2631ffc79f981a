package main

import (
	"os"

	"github.com/penwyp/usage-stats/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
