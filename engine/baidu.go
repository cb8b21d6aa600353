package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/andybalholm/cascadia"
)

const (
	baiduHome         = "https://www.baidu.com/"
	baiduSearchBox    = "#kw"
	baiduSubmit       = "#su"
	baiduResults      = "a:has(em)"
	baiduCurrentPage  = `strong > span[class^="page-item"]`
	baiduPageSize     = 10
	baiduOffsetParam  = "pn"
	baiduHighlightDep = 5
)

var (
	baiduResultsSel     = cascadia.MustCompile(baiduResults)
	baiduCurrentPageSel = cascadia.MustCompile(baiduCurrentPage)
)

// Baidu drives www.baidu.com. Pagination rewrites the "pn" offset of the
// first result page URL; result links are redirects resolved over HTTP.
type Baidu struct {
	home     string
	resolver Resolver
}

// NewBaidu creates a Baidu driver that resolves result links with resolver.
func NewBaidu(resolver Resolver) *Baidu {
	return &Baidu{home: baiduHome, resolver: resolver}
}

func (b *Baidu) Name() string { return "baidu" }

func (b *Baidu) Stealth() bool { return false }

func (b *Baidu) Open(ctx context.Context, tab Tab, keyword string) (Session, error) {
	if err := tab.Navigate(b.home); err != nil {
		return nil, fmt.Errorf("baidu: open home: %w", err)
	}
	if err := tab.Input(baiduSearchBox, keyword); err != nil {
		return nil, fmt.Errorf("baidu: type keyword: %w", err)
	}
	if err := tab.Click(baiduSubmit); err != nil {
		return nil, fmt.Errorf("baidu: submit keyword: %w", err)
	}
	if err := tab.WaitVisible(baiduResults); err != nil {
		return nil, fmt.Errorf("baidu: wait for results: %w", err)
	}
	first, err := tab.URL()
	if err != nil {
		return nil, fmt.Errorf("baidu: read location: %w", err)
	}
	return &baiduSession{tab: tab, resolver: b.resolver, first: first}, nil
}

type baiduSession struct {
	tab      Tab
	resolver Resolver

	// first is the URL of the first result page; later pages are derived
	// from it by offset.
	first string

	// page is the zero-based index of the current result page.
	page int

	// html is the current page, read by Next so Entries can reuse it.
	html string

	domIndex []int
}

func (s *baiduSession) Entries(ctx context.Context) ([]Entry, error) {
	html := s.html
	if html == "" {
		var err error
		if html, err = s.tab.HTML(); err != nil {
			return nil, fmt.Errorf("baidu: read page: %w", err)
		}
	}
	s.html = ""

	anchors, err := parseAnchors(html, baiduResultsSel)
	if err != nil {
		return nil, fmt.Errorf("baidu: parse page: %w", err)
	}

	current, _ := s.tab.URL()
	entries := make([]Entry, 0, len(anchors))
	s.domIndex = s.domIndex[:0]
	for _, a := range anchors {
		if a.href == "" {
			continue
		}
		entries = append(entries, Entry{Title: a.title, URL: resolveRef(current, a.href)})
		s.domIndex = append(s.domIndex, a.index)
	}
	return entries, nil
}

// ResolveEntry follows the redirect behind e.URL. On any failure the
// redirect link itself is kept.
func (s *baiduSession) ResolveEntry(ctx context.Context, e Entry) Entry {
	final, err := s.resolver.Resolve(ctx, e.URL)
	if err != nil {
		slog.Debug("baidu: keeping unresolved link", "href", e.URL, "error", err)
		return e
	}
	e.URL = final
	return e
}

func (s *baiduSession) Next(ctx context.Context) error {
	next, err := withOffset(s.first, (s.page+1)*baiduPageSize)
	if err != nil {
		return fmt.Errorf("baidu: build next page URL: %w", err)
	}
	if err := s.tab.Navigate(next); err != nil {
		return fmt.Errorf("baidu: open next page: %w", err)
	}
	s.page++

	html, err := s.tab.HTML()
	if err != nil {
		return fmt.Errorf("baidu: read page: %w", err)
	}

	// Past the last page Baidu serves page 1 again.
	wrapped, err := anyText(html, baiduCurrentPageSel, "1")
	if err != nil {
		return fmt.Errorf("baidu: parse pagination: %w", err)
	}
	if wrapped {
		return ErrEndOfResults
	}
	s.html = html
	return nil
}

func (s *baiduSession) Capture(ctx context.Context, i int) ([]byte, error) {
	if i < 0 || i >= len(s.domIndex) {
		return nil, fmt.Errorf("baidu: entry %d out of range", i)
	}
	if err := s.tab.Highlight(baiduResults, s.domIndex[i], baiduHighlightDep); err != nil {
		return nil, fmt.Errorf("baidu: highlight: %w", err)
	}
	return s.tab.Screenshot()
}

// withOffset returns rawURL with its result offset parameter set to offset.
func withOffset(rawURL string, offset int) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(baiduOffsetParam, strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
