package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
)

const version = "0.1.0"

// exitError ends the process with code without printing anything.
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(2)
	}
}
