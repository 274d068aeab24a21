// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/wangwllu/peoples-daily/internal/fetch"
	"github.com/wangwllu/peoples-daily/internal/merge"
	"github.com/wangwllu/peoples-daily/internal/testpdf"
	"github.com/wangwllu/peoples-daily/pkg/types"
)

var testDate = time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)

type fakeResolver struct {
	issue *types.Issue
	err   error
}

func (f *fakeResolver) Resolve(date time.Time, w io.Writer) (*types.Issue, error) {
	return f.issue, f.err
}

type fakeFetcher struct {
	result fetch.Result
}

func (f *fakeFetcher) FetchIssue(issue *types.Issue, w io.Writer) fetch.Result {
	return f.result
}

type fakeCompressor struct {
	out []byte
	err error
}

func (f *fakeCompressor) Compress(pdf []byte) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.out == nil {
		return pdf, nil
	}
	return f.out, nil
}

// testPipeline builds a pipeline where pageCount pages resolve and the pages
// listed in failed fail to fetch.
func testPipeline(t *testing.T, pageCount int, failed ...int) *Pipeline {
	t.Helper()
	pdf := testpdf.Minimal(t)

	failedSet := make(map[int]bool)
	for _, p := range failed {
		failedSet[p] = true
	}

	issue := &types.Issue{Date: testDate}
	var result fetch.Result
	for p := 1; p <= pageCount; p++ {
		key := types.PageKey{Section: 0, Page: p}
		page := types.Page{Key: key, URL: "https://paper.example/pages/" + key.String() + ".pdf"}
		issue.Pages = append(issue.Pages, page)

		if failedSet[p] {
			result.Failures = append(result.Failures, types.PageFailure{
				Key: key, URL: page.URL, Reason: "HTTP 404",
			})
			continue
		}
		page.Content = pdf
		result.Pages = append(result.Pages, page)
	}

	return &Pipeline{
		Resolver: &fakeResolver{issue: issue},
		Fetcher:  &fakeFetcher{result: result},
	}
}

func outPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "paper.pdf")
}

func TestRun_AllPagesSucceed(t *testing.T) {
	p := testPipeline(t, 3)
	out := outPath(t)

	result, err := p.Run(testDate, out, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, StateDone, result.State)
	assert.Equal(t, 3, result.PagesTotal)
	assert.Equal(t, 3, result.PagesFetched)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.Compressed)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.Bytes)

	n, err := merge.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestRun_PartialFailure(t *testing.T) {
	p := testPipeline(t, 4, 2, 4)
	out := outPath(t)

	result, err := p.Run(testDate, out, io.Discard)
	require.NoError(t, err, "partial failure must not fail the run")

	assert.Equal(t, StateDonePartial, result.State)
	assert.Equal(t, 2, result.PagesFetched)
	assert.Len(t, result.Failures, 2)
	assert.Len(t, result.Warnings, 2)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	n, err := merge.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_AllPagesFail(t *testing.T) {
	p := testPipeline(t, 3, 1, 2, 3)
	out := outPath(t)

	result, err := p.Run(testDate, out, io.Discard)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPages)
	assert.Equal(t, StateFailed, result.State)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr), "no output file may be written on total failure")
}

func TestRun_ResolutionFailure(t *testing.T) {
	p := &Pipeline{
		Resolver: &fakeResolver{err: errors.New("date is in the future")},
		Fetcher:  &fakeFetcher{},
	}
	out := outPath(t)

	result, err := p.Run(testDate, out, io.Discard)
	require.Error(t, err)
	assert.Equal(t, StateFailed, result.State)

	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_CompressionShrinks(t *testing.T) {
	p := testPipeline(t, 2)
	p.Compressor = &fakeCompressor{out: []byte("%PDF-tiny")}
	out := outPath(t)

	result, err := p.Run(testDate, out, io.Discard)
	require.NoError(t, err)

	assert.True(t, result.Compressed)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-tiny"), data)
}

func TestRun_CompressionFailureKeepsOutput(t *testing.T) {
	p := testPipeline(t, 2)
	p.Compressor = &fakeCompressor{err: errors.New("exit status 1")}
	out := outPath(t)

	result, err := p.Run(testDate, out, io.Discard)
	require.NoError(t, err, "compression is best-effort")

	assert.Equal(t, StateDone, result.State)
	assert.False(t, result.Compressed)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "compression failed")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	n, err := merge.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_NoCompressorMatchesUncompressed(t *testing.T) {
	// With no compressor wired, the output must be the plain merge of the
	// same pages. Merged documents carry a creation timestamp, so compare
	// size and page count rather than raw bytes.
	p := testPipeline(t, 2)
	out := outPath(t)

	result, err := p.Run(testDate, out, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, StateDone, result.State)

	fetched := p.Fetcher.(*fakeFetcher).result.Pages
	expected, err := merge.Pages(fetched)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
	assert.Equal(t, len(expected), len(data))

	n, err := merge.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRun_WritesManifest(t *testing.T) {
	p := testPipeline(t, 3, 2)
	p.WriteManifest = true
	out := outPath(t)

	_, err := p.Run(testDate, out, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(ManifestPath(out))
	require.NoError(t, err)

	var m manifest
	require.NoError(t, yaml.Unmarshal(data, &m))
	assert.Equal(t, "2025-10-15", m.Date)
	assert.Equal(t, 3, m.PagesTotal)
	assert.Equal(t, 2, m.PagesFetched)
	require.Len(t, m.Failures, 1)
	assert.Equal(t, types.PageKey{Section: 0, Page: 2}, m.Failures[0].Key)
}

func TestManifestPath(t *testing.T) {
	assert.Equal(t, "paper.manifest.yaml", ManifestPath("paper.pdf"))
	assert.Equal(t, "out/人民日报_2025-10-15.manifest.yaml", ManifestPath("out/人民日报_2025-10-15.pdf"))
}

func TestStateString(t *testing.T) {
	states := map[State]string{
		StateResolving:   "resolving",
		StateFetching:    "fetching",
		StateMerging:     "merging",
		StateCompressing: "compressing",
		StateDone:        "done",
		StateDonePartial: "done (partial)",
		StateFailed:      "failed",
		State(99):        "unknown",
	}
	for state, want := range states {
		assert.Equal(t, want, state.String())
	}
}
