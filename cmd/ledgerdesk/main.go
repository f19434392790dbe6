// Package main is the entry point of the LedgerDesk CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/ledgerdesk/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
