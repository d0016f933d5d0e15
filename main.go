package main

import (
	"os"

	"github.com/gridpulse/dersim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
