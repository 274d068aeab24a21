// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve turns a calendar date into the ordered set of page PDF
// URLs published that day. The publisher exposes one layout index page per
// newspaper page; the resolver walks them in page order and extracts each
// page's PDF link. The walk ends at the first page number with no layout,
// since the publisher numbers pages without gaps.
package resolve

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wangwllu/peoples-daily/pkg/types"
)

// ErrNoPagesPublished indicates the date passed validation but no layout
// page yielded a PDF link. The caller must treat this as a failed run, not
// an empty document.
var ErrNoPagesPublished = errors.New("no pages published for date")

// UnsupportedDateError reports a date outside the range the archive covers.
type UnsupportedDateError struct {
	Date   time.Time
	Reason string
}

func (e *UnsupportedDateError) Error() string {
	return fmt.Sprintf("unsupported date %s: %s", e.Date.Format("2006-01-02"), e.Reason)
}

// Resolver resolves issue dates against a publisher edition scheme.
type Resolver struct {
	clients []*http.Client
	cfg     types.EditionConfig

	// now is substituted by tests to pin the future-date check.
	now func() time.Time
}

const defaultMaxPages = 40

// New creates a Resolver that tries the given clients in order for each
// layout request.
func New(clients []*http.Client, cfg types.EditionConfig) *Resolver {
	return &Resolver{
		clients: clients,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Resolve validates the date and returns the day's issue with every page URL
// populated. Pages are strictly ordered by (section, page) with unique keys.
// Per-page status lines go to w.
func (r *Resolver) Resolve(date time.Time, w io.Writer) (*types.Issue, error) {
	if err := r.validateDate(date); err != nil {
		return nil, err
	}

	maxPages := r.cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	issue := &types.Issue{Date: date}
	for si, section := range r.cfg.Sections {
		for page := 1; page <= maxPages; page++ {
			pdfURL, ok := r.resolvePageURL(date, section, page, w)
			if !ok {
				break
			}
			issue.Pages = append(issue.Pages, types.Page{
				Key: types.PageKey{Section: si, Page: page},
				URL: pdfURL,
			})
		}
	}

	if len(issue.Pages) == 0 {
		return nil, fmt.Errorf("%w (%s)", ErrNoPagesPublished, date.Format("2006-01-02"))
	}
	return issue, nil
}

// validateDate rejects future dates and dates preceding the archive start.
func (r *Resolver) validateDate(date time.Time) error {
	today := midnight(r.now())
	day := midnight(date)

	if day.After(today) {
		return &UnsupportedDateError{Date: date, Reason: "date is in the future"}
	}

	if r.cfg.ArchiveStart != "" {
		start, err := time.Parse("2006-01-02", r.cfg.ArchiveStart)
		if err != nil {
			return fmt.Errorf("invalid archive_start %q: %w", r.cfg.ArchiveStart, err)
		}
		if day.Before(start) {
			return &UnsupportedDateError{
				Date:   date,
				Reason: fmt.Sprintf("digital archive starts %s", r.cfg.ArchiveStart),
			}
		}
	}
	return nil
}

// resolvePageURL finds the PDF URL for one page by fetching its layout index
// from each base URL in turn. It returns ok=false when no base yields a PDF
// link, which ends the section walk.
func (r *Resolver) resolvePageURL(date time.Time, section types.SectionConfig, page int, w io.Writer) (string, bool) {
	for _, base := range r.cfg.BaseURLs {
		layoutURL := joinURL(base, ExpandPattern(section.LayoutPattern, date, page))
		fmt.Fprintf(w, "querying: %s\n", layoutURL)

		body, err := r.fetchLayout(layoutURL)
		if err != nil {
			continue
		}

		href, found := extractPDFHref(body)
		if !found {
			continue
		}

		pdfURL, err := resolveHref(layoutURL, href)
		if err != nil {
			continue
		}
		return pdfURL, true
	}
	return "", false
}

// fetchLayout retrieves a layout index page with a single attempt per client.
func (r *Resolver) fetchLayout(layoutURL string) ([]byte, error) {
	var lastErr error
	for _, client := range r.clients {
		req, err := http.NewRequest(http.MethodGet, layoutURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", r.cfg.UserAgent)

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := readBody(resp)
		if err != nil {
			lastErr = err
			continue
		}
		return body, nil
	}
	return nil, lastErr
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
