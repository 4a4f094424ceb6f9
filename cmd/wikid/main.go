// Package main provides the entry point for the wikid CLI.
//
// wikid finds a path of hyperlinks between two Wikipedia articles by
// expanding, at every step, the link that looks most relevant to the
// destination.
//
// Usage:
//
//	wikid search <start> <destination>
//	wikid batch <pairs-file>
//	wikid history [search-id]
//
// See --help for all available options.
package main

// main is the entry point for wikid.
func main() {
	Execute()
}
