// Package report writes the results of a batch check.
//
// Three formats are available: SimpleWriter for terminals, JSONWriter for
// tools and MarkdownWriter for sharing. All of them consume the same
// []model.BatchEntry in input order.
package report
