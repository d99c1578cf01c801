// The main package for the nabih-scraper executable.
package main

import (
	"github.com/Hamzashehzad1/nabih-scraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
