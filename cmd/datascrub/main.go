// Package main provides the entry point for the DataScrub Pro CLI.
//
// DataScrub Pro scans data brokers, breach databases, and dark-web indexes
// for a user's personal data and drives removal requests against the
// sources that list it.
//
// Usage:
//
//	datascrub profile set --user jane --name "Jane Doe" --email jane@example.com
//	datascrub scan --user jane
//	datascrub removal bulk --user jane
//
// See --help for all available options.
package main

// main is the entry point for DataScrub Pro.
func main() {
	Execute()
}
