package main

import (
	"os"

	"github.com/Johnxjp/tts-evaluation/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
