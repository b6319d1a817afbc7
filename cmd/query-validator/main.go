// Package main is the entry point for the query-validator application
package main

import (
	"os"

	"github.com/ethpandaops/query-validator/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
