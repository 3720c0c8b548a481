package page

import (
	"net/url"
	"strings"

	"github.com/nao1215/wikibridge/internal/model"
)

// DefaultRoutePrefix is the path prefix under which articles are served.
const DefaultRoutePrefix = "/wiki/"

// DefaultHomePage is the identifier of the source site's home page.
const DefaultHomePage = "Main_Page"

// DefaultReservedPrefixes returns the namespace prefixes that never denote
// an ordinary article.
func DefaultReservedPrefixes() []string {
	return []string{
		"Special:",
		"Wikipedia:",
		"Wikipedia_talk:",
		"Help:",
		"Help_talk:",
		"Talk:",
		"User:",
		"User_talk:",
		"File:",
		"File_talk:",
		"Image:",
		"Category:",
		"Category_talk:",
		"Template:",
		"Template_talk:",
		"Portal:",
		"Portal_talk:",
		"Module:",
		"Module_talk:",
		"MOS:",
		"Draft:",
		"Draft_talk:",
		"Book:",
		"Book_talk:",
		"TimedText:",
		"TimedText_talk:",
		"MediaWiki:",
		"MediaWiki_talk:",
	}
}

// Classifier decides page eligibility and extracts article identity.
// The zero value is not usable; create one with NewClassifier.
type Classifier struct {
	routePrefix string
	homePage    string
	reserved    []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRoutePrefix overrides the article routing prefix.
func WithRoutePrefix(prefix string) Option {
	return func(c *Classifier) {
		if prefix != "" {
			c.routePrefix = prefix
		}
	}
}

// WithHomePage overrides the home page identifier.
func WithHomePage(id string) Option {
	return func(c *Classifier) {
		if id != "" {
			c.homePage = id
		}
	}
}

// WithReservedPrefixes replaces the reserved namespace prefixes.
// An empty slice keeps the defaults.
func WithReservedPrefixes(prefixes []string) Option {
	return func(c *Classifier) {
		if len(prefixes) > 0 {
			c.reserved = append([]string(nil), prefixes...)
		}
	}
}

// NewClassifier creates a Classifier with the source site's defaults.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		routePrefix: DefaultRoutePrefix,
		homePage:    DefaultHomePage,
		reserved:    DefaultReservedPrefixes(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsEligible reports whether the page at path should be checked.
// Paths outside the routing prefix are never articles.
func (c *Classifier) IsEligible(path string) bool {
	raw, ok := strings.CutPrefix(path, c.routePrefix)
	if !ok {
		return false
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return false
	}
	title, _, _ := strings.Cut(decoded, "#")
	if title == "" || title == c.homePage {
		return false
	}
	for _, prefix := range c.reserved {
		if strings.HasPrefix(title, prefix) {
			return false
		}
	}
	return true
}

// ExtractIdentifier returns the article identifier for path: the routing
// prefix is removed and any fragment stripped. The result stays in its
// encoded form so it can be appended to the counterpart base unchanged.
func (c *Classifier) ExtractIdentifier(path string) model.ArticleID {
	id, _, _ := strings.Cut(strings.TrimPrefix(path, c.routePrefix), "#")
	return model.ArticleID(id)
}

// ExtractAnchor returns the anchor named by fragment. A leading "#" is
// removed; an empty fragment yields model.NoAnchor.
func (c *Classifier) ExtractAnchor(fragment string) model.Anchor {
	name := strings.TrimPrefix(fragment, "#")
	if name == "" {
		return model.NoAnchor
	}
	return model.AnchorOf(name)
}

// Classify parses a full page location and returns the check request for it.
// The boolean is false when the page is not eligible or the location cannot
// be parsed.
func (c *Classifier) Classify(location string) (model.CheckRequest, bool) {
	u, err := url.Parse(location)
	if err != nil {
		return model.CheckRequest{}, false
	}
	path := u.EscapedPath()
	if !c.IsEligible(path) {
		return model.CheckRequest{}, false
	}
	return model.CheckRequest{
		ArticleID: c.ExtractIdentifier(path),
		Anchor:    c.ExtractAnchor(u.EscapedFragment()),
	}, true
}
