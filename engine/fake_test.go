package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// fakeTab serves canned HTML by URL. Submitting the search form (Enter or
// click) moves it to submitURL.
type fakeTab struct {
	pages     map[string]string
	current   string
	submitURL string

	typed       map[string]string
	navigations []string
	highlights  []highlightCall
	failShot    bool
}

type highlightCall struct {
	selector string
	index    int
	depth    int
}

func newFakeTab(submitURL string, pages map[string]string) *fakeTab {
	return &fakeTab{
		pages:     pages,
		submitURL: submitURL,
		typed:     make(map[string]string),
	}
}

func (t *fakeTab) Navigate(url string) error {
	if _, ok := t.pages[url]; !ok {
		return fmt.Errorf("fake: no page for %s", url)
	}
	t.navigations = append(t.navigations, url)
	t.current = url
	return nil
}

func (t *fakeTab) WaitVisible(selector string) error {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(t.pages[t.current]))
	if err != nil {
		return err
	}
	if doc.FindMatcher(sel).Length() == 0 {
		return fmt.Errorf("fake: %q not found on %s", selector, t.current)
	}
	return nil
}

func (t *fakeTab) Input(selector, text string) error {
	t.typed[selector] = text
	return nil
}

func (t *fakeTab) PressEnter(string) error {
	t.current = t.submitURL
	return nil
}

func (t *fakeTab) Click(string) error {
	t.current = t.submitURL
	return nil
}

func (t *fakeTab) HTML() (string, error) { return t.pages[t.current], nil }

func (t *fakeTab) URL() (string, error) { return t.current, nil }

func (t *fakeTab) Highlight(selector string, index, depth int) error {
	t.highlights = append(t.highlights, highlightCall{selector, index, depth})
	return nil
}

func (t *fakeTab) Screenshot() ([]byte, error) {
	if t.failShot {
		return nil, fmt.Errorf("fake: screenshot failed")
	}
	return []byte("png:" + t.current), nil
}

// fakeSession replays fixed pages of entries.
type fakeSession struct {
	pages    [][]Entry
	current  int
	nextErr  error
	entryErr error
	nexts    int
	captured []int
	shotErr  error
}

func (s *fakeSession) Entries(context.Context) ([]Entry, error) {
	if s.entryErr != nil {
		return nil, s.entryErr
	}
	return s.pages[s.current], nil
}

func (s *fakeSession) Next(context.Context) error {
	s.nexts++
	if s.nextErr != nil {
		return s.nextErr
	}
	if s.current+1 >= len(s.pages) {
		return ErrEndOfResults
	}
	s.current++
	return nil
}

func (s *fakeSession) Capture(_ context.Context, i int) ([]byte, error) {
	s.captured = append(s.captured, i)
	if s.shotErr != nil {
		return nil, s.shotErr
	}
	return []byte("png"), nil
}

// fakeResolver maps links to final URLs; unknown links fail.
type fakeResolver map[string]string

func (r fakeResolver) Resolve(_ context.Context, rawURL string) (string, error) {
	if final, ok := r[rawURL]; ok {
		return final, nil
	}
	return "", fmt.Errorf("fake: connection refused")
}

// countingResolver records every link it is asked to resolve.
type countingResolver struct {
	links fakeResolver
	calls []string
}

func (r *countingResolver) Resolve(ctx context.Context, rawURL string) (string, error) {
	r.calls = append(r.calls, rawURL)
	return r.links.Resolve(ctx, rawURL)
}

// entries builds n entries on host, numbered from start.
func entries(host string, start, n int) []Entry {
	out := make([]Entry, n)
	for i := range out {
		out[i] = Entry{
			Title: fmt.Sprintf("result %d", start+i),
			URL:   fmt.Sprintf("https://%s/page/%d", host, start+i),
		}
	}
	return out
}
