// Package main is the single-binary entrypoint for cfdaily:
// the daemon and its CLI in one executable.
package main

import "github.com/cfdaily/cfdaily/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
