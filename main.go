package main

import (
	"os"

	"github.com/Attamusc/weekly-report-bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
