// Package main provides the pbimodel command.
package main

import (
	"os"

	"github.com/ThaylaOliveira/powerbi-model-manager/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
