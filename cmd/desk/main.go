package main

import (
	"os"

	"github.com/rustyeddy/desk/cmd/desk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
