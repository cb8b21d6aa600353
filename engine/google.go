package engine

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
)

const (
	googleHome      = "https://www.google.com/"
	googleSearchBox = "textarea"
	googleResults   = "a:has(h3)"
	googleNext      = "a#pnnext"

	// googleHighlightDepth is how many ancestors above the result link are
	// outlined, enough to frame the whole result block.
	googleHighlightDepth = 8
)

var (
	googleResultsSel = cascadia.MustCompile(googleResults)
	googleNextSel    = cascadia.MustCompile(googleNext)
)

// Google drives www.google.com. Pagination follows the "next" link.
type Google struct {
	home string
}

// NewGoogle creates a Google driver.
func NewGoogle() *Google {
	return &Google{home: googleHome}
}

func (g *Google) Name() string { return "google" }

func (g *Google) Stealth() bool { return true }

func (g *Google) Open(ctx context.Context, tab Tab, keyword string) (Session, error) {
	if err := tab.Navigate(g.home); err != nil {
		return nil, fmt.Errorf("google: open home: %w", err)
	}
	if err := tab.Input(googleSearchBox, keyword); err != nil {
		return nil, fmt.Errorf("google: type keyword: %w", err)
	}
	if err := tab.PressEnter(googleSearchBox); err != nil {
		return nil, fmt.Errorf("google: submit keyword: %w", err)
	}
	if err := tab.WaitVisible(googleResults); err != nil {
		return nil, fmt.Errorf("google: wait for results: %w", err)
	}
	return &googleSession{tab: tab}, nil
}

type googleSession struct {
	tab Tab

	// html is the document the last Entries call parsed; Next reads the
	// pagination link from it.
	html string

	// domIndex maps entry positions to their index among googleResults
	// matches (anchors without href are skipped as entries).
	domIndex []int
}

func (s *googleSession) Entries(ctx context.Context) ([]Entry, error) {
	html, err := s.tab.HTML()
	if err != nil {
		return nil, fmt.Errorf("google: read page: %w", err)
	}
	s.html = html

	anchors, err := parseAnchors(html, googleResultsSel)
	if err != nil {
		return nil, fmt.Errorf("google: parse page: %w", err)
	}

	entries := make([]Entry, 0, len(anchors))
	s.domIndex = s.domIndex[:0]
	for _, a := range anchors {
		if a.href == "" {
			continue
		}
		entries = append(entries, Entry{Title: a.title, URL: unwrapGoogleLink(a.href)})
		s.domIndex = append(s.domIndex, a.index)
	}
	return entries, nil
}

func (s *googleSession) Next(ctx context.Context) error {
	href, err := firstAttr(s.html, googleNextSel, "href")
	if err != nil {
		return fmt.Errorf("google: parse pagination: %w", err)
	}
	if href == "" {
		return ErrEndOfResults
	}

	current, err := s.tab.URL()
	if err != nil {
		return fmt.Errorf("google: read location: %w", err)
	}
	if err := s.tab.Navigate(resolveRef(current, href)); err != nil {
		return fmt.Errorf("google: open next page: %w", err)
	}
	if err := s.tab.WaitVisible(googleResults); err != nil {
		return fmt.Errorf("google: wait for results: %w", err)
	}
	return nil
}

func (s *googleSession) Capture(ctx context.Context, i int) ([]byte, error) {
	if i < 0 || i >= len(s.domIndex) {
		return nil, fmt.Errorf("google: entry %d out of range", i)
	}
	if err := s.tab.Highlight(googleResults, s.domIndex[i], googleHighlightDepth); err != nil {
		return nil, fmt.Errorf("google: highlight: %w", err)
	}
	return s.tab.Screenshot()
}

// unwrapGoogleLink turns Google's "/url?q=<target>" tracking links into
// the target URL. Other hrefs are returned unchanged.
func unwrapGoogleLink(href string) string {
	if !strings.HasPrefix(href, "/url?") {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	q := u.Query()
	if target := q.Get("q"); target != "" {
		return target
	}
	if target := q.Get("url"); target != "" {
		return target
	}
	return href
}
