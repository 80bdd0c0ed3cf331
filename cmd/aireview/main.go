package main

import (
	"os"

	"github.com/DifanaDAP/ai-reviewer/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
