// Package router carries check requests from a page to the background and
// responses back.
//
// The background side (Background) runs the existence check, decides whether
// to navigate the requesting tab and always answers exactly once. The page
// side (Page, Receiver) classifies a location, sends at most one request per
// visit and turns the response into a notice or nothing. Transport abstracts
// the channel between the two: LocalTransport for in-process use and
// bridge.Client over HTTP.
package router
