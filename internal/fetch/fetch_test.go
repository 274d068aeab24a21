// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wangwllu/peoples-daily/internal/testpdf"
	"github.com/wangwllu/peoples-daily/pkg/types"
)

// pageServer serves the minimal PDF for the given page numbers under
// /pages/NN.pdf and 404 for everything else.
func pageServer(t *testing.T, available ...int) *httptest.Server {
	t.Helper()
	pdf := testpdf.Minimal(t)
	ok := make(map[string]bool)
	for _, p := range available {
		ok[fmt.Sprintf("/pages/%02d.pdf", p)] = true
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !ok[r.URL.Path] {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdf)
	}))
}

func testIssue(baseURL string, pages int) *types.Issue {
	issue := &types.Issue{Date: time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)}
	for p := 1; p <= pages; p++ {
		issue.Pages = append(issue.Pages, types.Page{
			Key: types.PageKey{Section: 0, Page: p},
			URL: fmt.Sprintf("%s/pages/%02d.pdf", baseURL, p),
		})
	}
	return issue
}

func testFetcher(ts *httptest.Server) *Fetcher {
	return New([]*http.Client{ts.Client()}, types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "test-agent"},
	})
}

func TestFetchIssue_AllPages(t *testing.T) {
	ts := pageServer(t, 1, 2, 3)
	defer ts.Close()

	result := testFetcher(ts).FetchIssue(testIssue(ts.URL, 3), io.Discard)

	require.Empty(t, result.Failures)
	require.Len(t, result.Pages, 3)
	for i, page := range result.Pages {
		assert.Equal(t, types.PageKey{Section: 0, Page: i + 1}, page.Key)
		assert.NotEmpty(t, page.Content)
	}
}

func TestFetchIssue_PartialFailureContinues(t *testing.T) {
	ts := pageServer(t, 1, 3) // page 2 missing
	defer ts.Close()

	result := testFetcher(ts).FetchIssue(testIssue(ts.URL, 3), io.Discard)

	require.Len(t, result.Pages, 2)
	assert.Equal(t, types.PageKey{Section: 0, Page: 1}, result.Pages[0].Key)
	assert.Equal(t, types.PageKey{Section: 0, Page: 3}, result.Pages[1].Key)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, types.PageKey{Section: 0, Page: 2}, result.Failures[0].Key)
	assert.Contains(t, result.Failures[0].Reason, "HTTP 404")
	assert.False(t, result.AllFailed())
	assert.Equal(t, 3, result.Total())
}

func TestFetchIssue_AllFailed(t *testing.T) {
	ts := pageServer(t) // nothing available
	defer ts.Close()

	result := testFetcher(ts).FetchIssue(testIssue(ts.URL, 2), io.Discard)

	assert.True(t, result.AllFailed())
	assert.Len(t, result.Failures, 2)
}

func TestFetchIssue_RejectsNonPDF(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>not a pdf</html>")
	}))
	defer ts.Close()

	result := testFetcher(ts).FetchIssue(testIssue(ts.URL, 1), io.Discard)

	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0].Reason, "not a readable PDF")
}

func TestFetchIssue_FallbackClient(t *testing.T) {
	ts := pageServer(t, 1)
	defer ts.Close()

	// Primary client dials a closed port; the fallback client reaches the
	// server. Mirrors the proxy-blocks-publisher case.
	broken := &http.Client{
		Timeout: 2 * time.Second,
		Transport: &http.Transport{
			Proxy: http.ProxyURL(mustParseURL(t, "http://127.0.0.1:1")),
		},
	}

	f := New([]*http.Client{broken, ts.Client()}, types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "test-agent"},
	})
	result := f.FetchIssue(testIssue(ts.URL, 1), io.Discard)

	require.Empty(t, result.Failures)
	require.Len(t, result.Pages, 1)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestFetchIssue_SendsHeaders(t *testing.T) {
	pdf := testpdf.Minimal(t)
	var gotUA, gotAccept string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write(pdf)
	}))
	defer ts.Close()

	f := New([]*http.Client{ts.Client()}, types.FetchConfig{
		HTTPConfig: types.HTTPConfig{UserAgent: "Mozilla/5.0 (test)"},
	})
	result := f.FetchIssue(testIssue(ts.URL, 1), io.Discard)

	require.Len(t, result.Pages, 1)
	assert.Equal(t, "Mozilla/5.0 (test)", gotUA)
	assert.Equal(t, acceptHeader, gotAccept)
}
