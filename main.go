// The main package for the paidwatch executable.
package main

import (
	"github.com/paidwatch/paidwatch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
