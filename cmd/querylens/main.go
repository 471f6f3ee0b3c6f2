// Package main is the QueryLens entrypoint.
package main

import (
	"os"

	"github.com/querylens-labs/querylens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
