// Command elgo classifies EL++ ontology documents.
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/elgo/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
