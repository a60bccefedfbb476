// Package main is the entry point for the pricing-estimate CLI.
package main

import (
	"os"

	"github.com/Omri-Jukin/Portfolio-sub003/cmd/cli/cmd"
	"github.com/Omri-Jukin/Portfolio-sub003/internal/logging"
)

func main() {
	err := cmd.Execute()
	logging.Sync()
	if err != nil {
		os.Exit(1)
	}
}
