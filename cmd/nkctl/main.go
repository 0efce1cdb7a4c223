package main

import (
	"os"

	"nebenkosten/cmd/nkctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
