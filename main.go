package main

import (
	"os"

	"github.com/algodrill/algodrill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
