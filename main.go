package main

import (
	"os"

	"github.com/spigell/networkiq/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
