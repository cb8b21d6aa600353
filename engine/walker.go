package engine

import (
	"context"
	"errors"
	"log/slog"
)

// WalkOptions configures a single walk over result pages.
type WalkOptions struct {
	// MaxPages caps the number of result pages read. Values < 1 read one page.
	MaxPages int

	// Match decides whether an entry URL belongs to the target domain.
	Match Matcher

	// Progress, if set, is called before each page with the 1-based page
	// index and MaxPages.
	Progress func(page, maxPages int)
}

// Outcome is the result of a walk.
type Outcome struct {
	// Rank is the 1-based position of the first matching entry, 0 if none.
	Rank int

	// Entries holds every entry seen, in page-visit order. On a match it
	// ends with the matching entry, so len(Entries) == Rank.
	Entries []Entry

	// PagesVisited counts the pages whose entries were read.
	PagesVisited int

	// Screenshot is the highlighted capture of the match, if one was taken.
	Screenshot []byte
}

// Walk reads result pages from sess until an entry matches, the engine runs
// out of pages, a page comes back empty or MaxPages pages have been read.
//
// Reaching the end of results is not an error. Any other failure from the
// session aborts the walk and is returned as is.
func Walk(ctx context.Context, sess Session, opts WalkOptions) (*Outcome, error) {
	maxPages := opts.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	resolver, _ := sess.(EntryResolver)

	out := &Outcome{}
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if opts.Progress != nil {
			opts.Progress(page, maxPages)
		}

		if page > 1 {
			if err := sess.Next(ctx); err != nil {
				if errors.Is(err, ErrEndOfResults) {
					slog.Debug("end of results", "page", page)
					break
				}
				return nil, err
			}
		}

		entries, err := sess.Entries(ctx)
		if err != nil {
			return nil, err
		}
		out.PagesVisited = page
		if len(entries) == 0 {
			slog.Debug("empty result page, stopping", "page", page)
			break
		}

		for i, e := range entries {
			if resolver != nil {
				e = resolver.ResolveEntry(ctx, e)
				if err := ctx.Err(); err != nil {
					return nil, err
				}
			}
			out.Entries = append(out.Entries, e)
			if opts.Match == nil || !opts.Match(e.URL) {
				continue
			}
			out.Rank = len(out.Entries)

			shot, err := sess.Capture(ctx, i)
			if err != nil {
				slog.Warn("screenshot of match failed",
					"page", page, "rank", out.Rank, "error", err,
				)
			} else {
				out.Screenshot = shot
			}
			return out, nil
		}
	}
	return out, nil
}
