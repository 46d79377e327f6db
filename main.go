// Package main is the entry point for the snipgraph CLI.
package main

import "snipgraph.dev/pkg/snipgraph/cmd"

func main() {
	cmd.Execute()
}
