// Command studio drives a Codegen Studio server from the terminal: scripted
// commands for every client operation and an interactive dashboard.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
