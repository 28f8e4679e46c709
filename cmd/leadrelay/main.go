// leadrelay - lead-qualification chat relay
package main

import (
	"os"

	"github.com/ashureev/leadrelay/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
