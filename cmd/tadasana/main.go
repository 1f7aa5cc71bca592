// Package main is the entry point for the Tadasana pose coach.
package main

import (
	"os"

	"github.com/ayusman/tadasana/cmd/tadasana/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
