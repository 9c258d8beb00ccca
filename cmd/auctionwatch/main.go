// Package main is the entry point for the auctionwatch CLI.
package main

import (
	"os"

	"github.com/jmylchreest/auctionwatch/cmd/auctionwatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
