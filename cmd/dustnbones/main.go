// Package main provides the dustnbones CLI.
package main

import (
	"context"
	"os"

	"github.com/mesh-intelligence/dustnbones/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
