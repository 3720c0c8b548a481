package model

// CheckResult is the classified outcome of one existence check.
//
// URL is present for every status except StatusError without a resolvable
// target. Error is only set when Status is StatusError. Navigated is only
// ever true when Status is StatusFound.
type CheckResult struct {
	Status    Status
	URL       string
	Navigated bool
	Error     string
}

// Found returns a result for a confirmed counterpart article.
func Found(url string) CheckResult {
	return CheckResult{Status: StatusFound, URL: url}
}

// NotFound returns a result for a confirmed absent article.
func NotFound(url string) CheckResult {
	return CheckResult{Status: StatusNotFound, URL: url}
}

// LoginRequired returns a result for an article hidden behind an auth wall.
func LoginRequired(url string) CheckResult {
	return CheckResult{Status: StatusLoginRequired, URL: url}
}

// Failed returns an error result. url may be empty when no target could be
// resolved.
func Failed(url string, err error) CheckResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return CheckResult{Status: StatusError, URL: url, Error: msg}
}

// WithNavigated returns a copy of r with Navigated set.
// Navigated stays false for any status other than StatusFound.
func (r CheckResult) WithNavigated(navigated bool) CheckResult {
	r.Navigated = navigated && r.Status == StatusFound
	return r
}
