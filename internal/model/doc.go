// Package model defines the data structures shared by the page context and
// the background context of wikibridge.
//
// This package contains the following main types:
//   - ArticleID and Anchor: the canonical identity of a source page
//   - CheckRequest: what the page context asks the background to check
//   - Status and CheckResult: the classified outcome of an existence check
//   - Request and Response: the wire messages exchanged between contexts
//   - BatchEntry and BatchSummary: per-location results of a batch check
//
// Models live in their own package because the classifier, the checker, the
// router and the HTTP bridge all need them, and keeping them here prevents
// import cycles.
package model
