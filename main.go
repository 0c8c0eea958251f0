package main

import (
	"os"

	"github.com/nextlevelbuilder/sweeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
