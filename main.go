package main

import (
	"fmt"
	"os"

	"github.com/twangodev/gemote/cmd/cli"
)

const (
	exitErrorTemplateConstant = "error: %v\n"
)

// main executes the gemote command-line application.
func main() {
	os.Exit(run())
}

func run() int {
	executionError := cli.Execute()
	if executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
	}
	return cli.ExitCode(executionError)
}
