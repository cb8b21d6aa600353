package engine

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// anchor is one result link found on a page. index is its position among
// all elements matching the engine's result selector, which is what the
// browser needs to find it again for highlighting.
type anchor struct {
	index int
	title string
	href  string
}

// parseAnchors returns every element matching sel in document order.
func parseAnchors(rawHTML string, sel cascadia.Selector) ([]anchor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	var anchors []anchor
	doc.FindMatcher(sel).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		anchors = append(anchors, anchor{
			index: i,
			title: strings.Join(strings.Fields(s.Text()), " "),
			href:  strings.TrimSpace(href),
		})
	})
	return anchors, nil
}

// firstAttr returns attr of the first element matching sel, or "".
func firstAttr(rawHTML string, sel cascadia.Selector, attr string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", err
	}
	v, _ := doc.FindMatcher(sel).First().Attr(attr)
	return strings.TrimSpace(v), nil
}

// anyText reports whether some element matching sel has exactly text once
// whitespace is trimmed.
func anyText(rawHTML string, sel cascadia.Selector, text string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return false, err
	}
	found := false
	doc.FindMatcher(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.TrimSpace(s.Text()) == text {
			found = true
		}
		return !found
	})
	return found, nil
}

// resolveRef resolves a possibly relative href against the page URL.
// Unparseable input is returned unchanged.
func resolveRef(pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := base.Parse(href)
	if err != nil {
		return href
	}
	return ref.String()
}
