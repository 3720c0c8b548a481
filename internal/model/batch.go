package model

import "time"

// BatchEntry is the outcome of one page location in a batch check.
// Skipped entries were not eligible and were never checked.
type BatchEntry struct {
	Location  string        `json:"location"`
	ArticleID ArticleID     `json:"articleId,omitempty"`
	Anchor    *string       `json:"anchor,omitempty"`
	Skipped   bool          `json:"skipped"`
	Status    Status        `json:"status,omitempty"`
	URL       string        `json:"url,omitempty"`
	Error     string        `json:"error,omitempty"`
	Duration  time.Duration `json:"durationNs,omitempty"`
}

// NewSkippedEntry returns the entry for an ineligible location.
func NewSkippedEntry(location string) BatchEntry {
	return BatchEntry{Location: location, Skipped: true}
}

// NewCheckedEntry returns the entry for a checked location.
func NewCheckedEntry(location string, req CheckRequest, result CheckResult, elapsed time.Duration) BatchEntry {
	return BatchEntry{
		Location:  location,
		ArticleID: req.ArticleID,
		Anchor:    req.Anchor.Pointer(),
		Status:    result.Status,
		URL:       result.URL,
		Error:     result.Error,
		Duration:  elapsed,
	}
}

// BatchSummary counts batch entries per outcome.
type BatchSummary struct {
	Total   int            `json:"total"`
	Skipped int            `json:"skipped"`
	Counts  map[Status]int `json:"counts"`
}

// Summarize counts entries per status.
func Summarize(entries []BatchEntry) BatchSummary {
	s := BatchSummary{Total: len(entries), Counts: make(map[Status]int, len(Statuses()))}
	for _, st := range Statuses() {
		s.Counts[st] = 0
	}
	for _, e := range entries {
		if e.Skipped {
			s.Skipped++
			continue
		}
		s.Counts[e.Status]++
	}
	return s
}
