// Package parser extracts announcement records from listing-page markup.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/yang208115/annwatch/internal/fingerprint"
	"github.com/yang208115/annwatch/internal/watch"
)

// Parser walks every anchor on the page and keeps the ones the classifier
// accepts. Parsing never fails: malformed markup degrades to an empty
// result, which the caller treats as a valid steady state.
type Parser struct {
	origin     string // scheme://host
	basePath   string // listing page URL with a trailing slash
	classifier Classifier
	dateFormat string
	clock      watch.Clock
	logger     *zap.Logger
}

// New builds a Parser anchored at the listing page URL.
func New(targetURL string, classifier Classifier, dateFormat string, clk watch.Clock, logger *zap.Logger) (*Parser, error) {
	u, err := url.Parse(targetURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse target url %q: not an absolute URL", targetURL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	basePath := targetURL
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}

	return &Parser{
		origin:     u.Scheme + "://" + u.Host,
		basePath:   basePath,
		classifier: classifier,
		dateFormat: dateFormat,
		clock:      clk,
		logger:     logger,
	}, nil
}

// Parse returns the announcement candidates found in markup, in document
// order. Duplicate (title, url) anchors collapse to the first occurrence so
// identifiers stay unique within one cycle.
func (p *Parser) Parse(markup []byte) []watch.Announcement {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(markup))
	if err != nil {
		p.logger.Warn("markup not parseable, treating page as empty", zap.Error(err))
		return nil
	}

	scrapedAt := p.clock.Now().Format(p.dateFormat)
	seen := make(map[string]struct{})
	var announcements []watch.Announcement

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		href := strings.TrimSpace(sel.AttrOr("href", ""))
		if text == "" || href == "" {
			return
		}
		if !p.classifier.Match(text) {
			return
		}

		resolved := p.resolveURL(href)
		id := fingerprint.ID(text, resolved)
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}

		announcements = append(announcements, watch.Announcement{
			ID:        id,
			Title:     text,
			URL:       resolved,
			ScrapedAt: scrapedAt,
			IsNew:     true,
		})
	})

	p.logger.Debug("page parsed", zap.Int("candidates", len(announcements)))
	return announcements
}

// resolveURL normalizes an anchor href to an absolute URL: absolute links
// pass through, root-relative links attach to the site origin, and anything
// else is taken relative to the listing page itself.
func (p *Parser) resolveURL(href string) string {
	switch {
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "/"):
		return p.origin + href
	default:
		return p.basePath + href
	}
}
