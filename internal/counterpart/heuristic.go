package counterpart

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/wikibridge/internal/model"
)

// DefaultPlaceholderPhrases are the lower-case phrases the counterpart shows
// on its "this page doesn't exist... yet" placeholder.
func DefaultPlaceholderPhrases() []string {
	return []string{"doesn't exist", "does not exist"}
}

// PlaceholderDetector decides whether a successfully fetched page is really
// a "does not exist yet" placeholder.
type PlaceholderDetector interface {
	IsPlaceholder(body string) bool
}

// PhraseDetector matches fixed phrases case-insensitively.
type PhraseDetector struct {
	phrases []string
}

// NewPhraseDetector creates a detector for the given phrases. An empty list
// falls back to DefaultPlaceholderPhrases.
func NewPhraseDetector(phrases ...string) *PhraseDetector {
	if len(phrases) == 0 {
		phrases = DefaultPlaceholderPhrases()
	}
	lower := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			lower = append(lower, p)
		}
	}
	return &PhraseDetector{phrases: lower}
}

// IsPlaceholder reports whether the case-folded body contains any phrase.
func (d *PhraseDetector) IsPlaceholder(body string) bool {
	lower := strings.ToLower(body)
	for _, p := range d.phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// AnchorResolver maps a target URL and an anchor to the URL the user should
// land on, given the body of the target page.
type AnchorResolver interface {
	Resolve(body, target string, anchor model.Anchor) string
}

// AnchorPattern returns the case-insensitive pattern that matches an
// element-id attribute, single- or double-quoted, whose value is exactly
// name. Every regex metacharacter in name is escaped.
func AnchorPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)id=["']` + regexp.QuoteMeta(name) + `["']`)
}

// RegexAnchorResolver searches the raw body with AnchorPattern.
type RegexAnchorResolver struct{}

// Resolve returns target#anchor when the body carries a matching id
// attribute, otherwise target. Without an anchor it returns target.
func (RegexAnchorResolver) Resolve(body, target string, anchor model.Anchor) string {
	if !anchor.Usable() {
		return target
	}
	if AnchorPattern(anchor.Name()).MatchString(body) {
		return anchor.AppendTo(target)
	}
	return target
}

// DOMAnchorResolver parses the body and looks for an element whose id
// equals the anchor, ignoring case. It tolerates markup the regex cannot,
// such as unquoted attributes or whitespace around "=".
type DOMAnchorResolver struct{}

// Resolve returns target#anchor when an element with a matching id exists,
// otherwise target. Unparseable bodies resolve to target.
func (DOMAnchorResolver) Resolve(body, target string, anchor model.Anchor) string {
	if !anchor.Usable() {
		return target
	}
	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return target
	}
	doc := goquery.NewDocumentFromNode(root)
	found := false
	doc.Find("[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		if strings.EqualFold(id, anchor.Name()) {
			found = true
			return false
		}
		return true
	})
	if found {
		return anchor.AppendTo(target)
	}
	return target
}

// Anchor resolution strategies selectable from configuration.
const (
	AnchorStrategyRegex = "regex"
	AnchorStrategyDOM   = "dom"
)

// NewAnchorResolver returns the resolver for a strategy name. Unknown names
// fall back to the regex resolver.
func NewAnchorResolver(strategy string) AnchorResolver {
	if strategy == AnchorStrategyDOM {
		return DOMAnchorResolver{}
	}
	return RegexAnchorResolver{}
}
