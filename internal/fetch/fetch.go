// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch downloads the page PDFs of a resolved issue. Each page gets
// a bounded single attempt per client; a failed page is recorded and skipped,
// never fatal on its own.
package fetch

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wangwllu/peoples-daily/pkg/types"
)

// acceptHeader asks for PDF first; some mirrors fall back to octet-stream.
const acceptHeader = "application/pdf,application/octet-stream;q=0.9,*/*;q=0.8"

// PageError reports a single page that failed to download or parse.
type PageError struct {
	Key types.PageKey
	URL string
	Err error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %s (%s): %v", e.Key, e.URL, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Result holds the outcome of fetching one issue.
type Result struct {
	// Pages are the successfully fetched pages, in issue order.
	Pages []types.Page

	// Failures lists the pages excluded from the output.
	Failures []types.PageFailure
}

// Total returns the number of pages attempted.
func (r Result) Total() int {
	return len(r.Pages) + len(r.Failures)
}

// AllFailed reports whether no page was fetched.
func (r Result) AllFailed() bool {
	return len(r.Pages) == 0
}

// Fetcher downloads page PDFs using a list of clients tried in order.
type Fetcher struct {
	clients []*http.Client
	cfg     types.FetchConfig

	// validationConf is shared across pages; relaxed mode accepts the
	// slightly off-spec PDFs the publisher serves.
	validationConf *model.Configuration
}

// New creates a Fetcher.
func New(clients []*http.Client, cfg types.FetchConfig) *Fetcher {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &Fetcher{
		clients:        clients,
		cfg:            cfg,
		validationConf: conf,
	}
}

// FetchIssue downloads every page of the issue in order, printing per-page
// status to w. Failed pages are recorded and the run continues; deciding
// whether zero successes is fatal is the caller's concern.
func (f *Fetcher) FetchIssue(issue *types.Issue, w io.Writer) Result {
	var result Result
	for i, page := range issue.Pages {
		if i > 0 && f.cfg.DownloadDelay > 0 {
			time.Sleep(f.cfg.DownloadDelay)
		}

		content, err := f.fetchPage(page.URL)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", page.Key, err)
			result.Failures = append(result.Failures, types.PageFailure{
				Key:    page.Key,
				URL:    page.URL,
				Reason: err.Error(),
			})
			continue
		}

		fmt.Fprintf(w, "fetched: %s (%d bytes)\n", page.Key, len(content))
		page.Content = content
		result.Pages = append(result.Pages, page)
	}
	return result
}

// fetchPage performs one GET attempt per client and validates the body as a
// PDF. The fallback client only covers the proxy-blocks-publisher case; a
// page that fails on every client stays failed.
func (f *Fetcher) fetchPage(url string) ([]byte, error) {
	var lastErr error
	for _, client := range f.clients {
		content, err := f.doFetch(client, url)
		if err != nil {
			lastErr = err
			continue
		}
		return content, nil
	}
	return nil, lastErr
}

func (f *Fetcher) doFetch(client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	if err := api.Validate(bytes.NewReader(content), f.validationConf); err != nil {
		return nil, fmt.Errorf("not a readable PDF: %w", err)
	}
	return content, nil
}
