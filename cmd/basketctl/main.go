package main

import (
	"os"

	"github.com/elys-network/basket/cmd/basketctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
