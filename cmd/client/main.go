// Package main is the daybook command-line client. It keeps the session token
// in a local file and talks to the server's JSON API.
package main

import (
	"fmt"
	"os"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
