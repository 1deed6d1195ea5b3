package main

import (
	"os"

	"github.com/aopsample/exectime/cmd/exectime/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
