package main

import (
	"fmt"
	"os"

	"go-synth/cmd/synth"
)

func main() {
	if err := synth.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "synth:", err)
		os.Exit(1)
	}
}
