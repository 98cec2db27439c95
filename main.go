package main

import (
	"os"

	"github.com/sadopc/tomato/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
