package engine

import (
	"context"
	"testing"
)

const googlePage1 = `<html><body><div id="search">
<div class="g"><a href="https://alpha.org/"><h3>Alpha</h3></a></div>
<div class="g"><a><h3>No link</h3></a></div>
<div class="g"><a href="/url?q=https://beta.org/post&amp;sa=U"><h3>Beta   post</h3></a></div>
<div class="g"><a href="https://gamma.org/"><h3>Gamma</h3></a></div>
<a href="https://nav.example.com/">navigation without heading</a>
</div>
<a id="pnnext" href="/search?q=test&amp;start=10">Next</a>
</body></html>`

const googlePage2 = `<html><body><div id="search">
<div class="g"><a href="https://delta.org/"><h3>Delta</h3></a></div>
<div class="g"><a href="https://www.example.com/about"><h3>Example</h3></a></div>
</div></body></html>`

func newGoogleFixture() *fakeTab {
	return newFakeTab("https://www.google.com/search?q=test", map[string]string{
		googleHome: `<html><body><form><textarea name="q"></textarea></form></body></html>`,
		"https://www.google.com/search?q=test":          googlePage1,
		"https://www.google.com/search?q=test&start=10": googlePage2,
	})
}

func TestGoogle_EntriesSkipAnchorsWithoutHref(t *testing.T) {
	tab := newGoogleFixture()
	sess, err := NewGoogle().Open(context.Background(), tab, "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if tab.typed[googleSearchBox] != "test" {
		t.Errorf("typed = %q, want keyword", tab.typed[googleSearchBox])
	}

	got, err := sess.Entries(context.Background())
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}

	want := []Entry{
		{Title: "Alpha", URL: "https://alpha.org/"},
		{Title: "Beta post", URL: "https://beta.org/post"},
		{Title: "Gamma", URL: "https://gamma.org/"},
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestGoogle_WalkFollowsNextLink(t *testing.T) {
	tab := newGoogleFixture()
	sess, err := NewGoogle().Open(context.Background(), tab, "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	m, _ := NewMatcher("substring", "example.com")
	out, err := Walk(context.Background(), sess, WalkOptions{MaxPages: 5, Match: m})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}

	if out.Rank != 3+2 {
		t.Errorf("rank = %d, want 5", out.Rank)
	}
	if out.PagesVisited != 2 {
		t.Errorf("pages visited = %d, want 2", out.PagesVisited)
	}
	last := tab.navigations[len(tab.navigations)-1]
	if last != "https://www.google.com/search?q=test&start=10" {
		t.Errorf("last navigation = %s", last)
	}
	if len(tab.highlights) != 1 {
		t.Fatalf("highlights = %+v", tab.highlights)
	}
	if h := tab.highlights[0]; h.selector != googleResults || h.index != 1 || h.depth != googleHighlightDepth {
		t.Errorf("highlight = %+v", h)
	}
	if string(out.Screenshot) != "png:https://www.google.com/search?q=test&start=10" {
		t.Errorf("screenshot = %q", out.Screenshot)
	}
}

func TestGoogle_NoNextLinkEndsResults(t *testing.T) {
	tab := newGoogleFixture()
	tab.submitURL = "https://www.google.com/search?q=test&start=10"

	sess, err := NewGoogle().Open(context.Background(), tab, "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := sess.Entries(context.Background()); err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if err := sess.Next(context.Background()); err != ErrEndOfResults {
		t.Errorf("Next = %v, want ErrEndOfResults", err)
	}
}

func TestGoogle_OpenFailsWithoutResults(t *testing.T) {
	tab := newFakeTab("https://www.google.com/sorry", map[string]string{
		googleHome:                     `<html><body><textarea></textarea></body></html>`,
		"https://www.google.com/sorry": `<html><body>unusual traffic</body></html>`,
	})
	if _, err := NewGoogle().Open(context.Background(), tab, "test"); err == nil {
		t.Error("expected error when no results render")
	}
}

func TestUnwrapGoogleLink(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://direct.org/", "https://direct.org/"},
		{"/url?q=https://a.org/x&sa=U", "https://a.org/x"},
		{"/url?url=https://b.org/&ved=1", "https://b.org/"},
		{"/url?sa=U", "/url?sa=U"},
	}
	for _, tt := range tests {
		if got := unwrapGoogleLink(tt.href); got != tt.want {
			t.Errorf("unwrapGoogleLink(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}

func TestGoogle_HostMatchSeesUnwrappedTarget(t *testing.T) {
	tab := newGoogleFixture()
	sess, err := NewGoogle().Open(context.Background(), tab, "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	m, err := NewMatcher("host", "beta.org")
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	out, err := Walk(context.Background(), sess, WalkOptions{MaxPages: 1, Match: m})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if out.Rank != 2 || out.Entries[1].URL != "https://beta.org/post" {
		t.Errorf("rank = %d, entries = %+v", out.Rank, out.Entries)
	}
}
