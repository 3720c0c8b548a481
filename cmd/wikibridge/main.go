// Package main provides the entry point for the wikibridge CLI.
//
// wikibridge checks whether the Wikipedia article a user is reading also
// exists on Grokipedia, and optionally navigates the reading tab there.
//
// Usage:
//
//	wikibridge serve
//	wikibridge visit <wikipedia-url>
//	wikibridge check <wikipedia-url>...
//	wikibridge toggle [on|off|status]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
