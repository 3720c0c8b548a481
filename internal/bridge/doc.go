// Package bridge exposes the background over local HTTP so page scripts and
// the CLI can reach it from another process.
//
// Routes:
//
//	POST /v1/messages                  check request, sender tab in X-Tab-Id
//	GET  /v1/preferences/auto-navigate current preference
//	PUT  /v1/preferences/auto-navigate set the preference
//	POST /v1/surface/toggle            activate the control-surface toggle
//	GET  /v1/surface                   current toggle item
//	POST /v1/tabs                      open a tab
//	GET  /v1/tabs/{id}                 inspect a tab
//	GET  /health                       liveness
//
// Browser requests carry an Origin header. Those from an allowed source-site
// origin may only call POST /v1/messages; every other browser request is
// rejected with 403. The remaining routes serve local callers, which send
// no Origin.
package bridge
