package scraper

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// highlightJS outlines the element `depth` parents above the matched one.
// It runs with `this` bound to the matched element.
const highlightJS = `(depth) => {
	let node = this;
	for (let i = 0; i < depth && node.parentElement; i++) {
		node = node.parentElement;
	}
	node.style.border = "4px solid red";
	node.style.boxShadow = "0 0 8px rgba(255, 0, 0, 0.5)";
	node.scrollIntoView({block: "center"});
}`

// tab implements engine.Tab on a pooled rod page. The page is already bound
// to the check's context, so every call stops when the check does.
type tab struct {
	page *rod.Page

	// wait bounds each element lookup on top of the check's own deadline.
	wait time.Duration

	// navFailures counts failed navigations; the pool uses it to retire
	// pages that keep failing.
	navFailures int
}

func newTab(page *rod.Page, wait time.Duration) *tab {
	if wait <= 0 {
		wait = 30 * time.Second
	}
	return &tab{page: page, wait: wait}
}

func (t *tab) Navigate(url string) error {
	if err := t.page.Navigate(url); err != nil {
		t.navFailures++
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := t.page.WaitLoad(); err != nil {
		t.navFailures++
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	if err := t.page.WaitDOMStable(300*time.Millisecond, 0.1); err != nil {
		slog.Debug("WaitDOMStable did not converge, proceeding with current DOM",
			"url", url, "error", err,
		)
	}
	return nil
}

func (t *tab) WaitVisible(selector string) error {
	el, err := t.element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (t *tab) Input(selector, text string) error {
	el, err := t.element(selector)
	if err != nil {
		return err
	}
	return el.Input(text)
}

func (t *tab) PressEnter(selector string) error {
	el, err := t.element(selector)
	if err != nil {
		return err
	}
	return el.Type(input.Enter)
}

func (t *tab) Click(selector string) error {
	el, err := t.element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (t *tab) HTML() (string, error) {
	return t.page.HTML()
}

func (t *tab) URL() (string, error) {
	info, err := t.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (t *tab) Highlight(selector string, index, depth int) error {
	els, err := t.page.Elements(selector)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(els) {
		return fmt.Errorf("element %d of %q not found (%d present)", index, selector, len(els))
	}
	_, err = els[index].Eval(highlightJS, depth)
	return err
}

func (t *tab) Screenshot() ([]byte, error) {
	return t.page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
}

// element waits up to t.wait for selector to appear. The returned element
// is detached from that wait deadline again.
func (t *tab) element(selector string) (*rod.Element, error) {
	el, err := t.page.Timeout(t.wait).Element(selector)
	if err != nil {
		return nil, fmt.Errorf("element %q: %w", selector, err)
	}
	return el.CancelTimeout(), nil
}
