// Package main is the entry point for the wallet dashboard server.
package main

import (
	"os"

	"wallet_dashboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
