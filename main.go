// Package main is the entry point for the tennisfeat CLI tool, which builds
// leakage-free pre-match feature datasets from ATP match records.
package main

import "github.com/pable/go-tennis-features/cmd"

func main() {
	cmd.Execute()
}
