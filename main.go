package main

import (
	"os"

	"github.com/pawcal/pawcal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
