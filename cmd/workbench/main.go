// Package main provides the CLI for the Workbench workbook state service.
package main

import (
	"fmt"
	"os"

	"github.com/slatehq/workbench/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
