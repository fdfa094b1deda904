package main

import (
	"os"

	"csv-stream-printer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
