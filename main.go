package main

import (
	"os"

	"github.com/bimmerbailey/shpdiag/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
