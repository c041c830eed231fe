// The main package for the statuscheck executable.
package main

import (
	"github.com/JakeFAU/crawl-status-check/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
