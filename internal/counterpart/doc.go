// Package counterpart checks whether an article exists on the counterpart
// encyclopedia.
//
// # Protocol
//
// Checker.Check issues exactly one GET to base+articleId with the user's
// session credentials, follows redirects, and classifies the outcome:
//
//	landed != target and (auth path or foreign host)  -> login_required
//	non-2xx status                                    -> not_found
//	placeholder phrase in lower-cased body            -> not_found
//	otherwise                                         -> found
//
// Transport and body-read failures become error results. There is no
// retry, no backoff and no caching; every call runs under its own deadline.
//
// # Heuristics
//
// Existence and anchor detection scrape HTML, which breaks whenever the
// counterpart rewords its placeholder page or changes its markup. Both are
// kept behind narrow interfaces (PlaceholderDetector, AnchorResolver) so a
// structured API can replace them without touching the protocol.
package counterpart
