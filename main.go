package main

import (
	"os"

	"github.com/faizan/audiobits/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
