// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline drives one run end to end: resolve the date, fetch the
// pages, merge them, optionally compress, and write the output file. The
// stages form an explicit state machine so partial-failure outcomes are
// observable rather than implied by control flow.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/wangwllu/peoples-daily/internal/fetch"
	"github.com/wangwllu/peoples-daily/internal/merge"
	"github.com/wangwllu/peoples-daily/pkg/types"
)

// State identifies where a run is, or where it ended.
type State int

const (
	StateResolving State = iota
	StateFetching
	StateMerging
	StateCompressing
	StateDone
	StateDonePartial
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StateCompressing:
		return "compressing"
	case StateDone:
		return "done"
	case StateDonePartial:
		return "done (partial)"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrNoPages indicates every page of the issue failed to fetch.
var ErrNoPages = errors.New("no pages could be fetched")

// Resolver turns a date into the day's issue.
type Resolver interface {
	Resolve(date time.Time, w io.Writer) (*types.Issue, error)
}

// Fetcher downloads the pages of an issue.
type Fetcher interface {
	FetchIssue(issue *types.Issue, w io.Writer) fetch.Result
}

// Compressor shrinks a merged document. compress.Ghostscript implements it.
type Compressor interface {
	Compress(pdf []byte) ([]byte, error)
}

// Pipeline wires the stages of one run together.
type Pipeline struct {
	Resolver Resolver
	Fetcher  Fetcher

	// Compressor is nil when compression is disabled or the tool is absent;
	// the compressing state is then skipped entirely.
	Compressor Compressor

	// WriteManifest writes a YAML run manifest next to the output file.
	WriteManifest bool
}

// Result is the outcome of one run: the merged document's whereabouts plus
// per-page outcomes. It is the caller's record for exit codes, warnings and
// the history ledger.
type Result struct {
	State        State
	Date         time.Time
	OutputPath   string
	PagesTotal   int
	PagesFetched int
	Failures     []types.PageFailure
	Bytes        int64
	Compressed   bool
	Warnings     []string
}

func (r *Result) warn(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Warnings = append(r.Warnings, msg)
	fmt.Fprintf(w, "warning: %s\n", msg)
}

// Run executes the pipeline for one date and writes the merged document to
// outputPath. A Result is returned even on failure so callers can inspect
// the final state. No output file is written unless the merge succeeded.
func (p *Pipeline) Run(date time.Time, outputPath string, w io.Writer) (*Result, error) {
	result := &Result{
		State:      StateResolving,
		Date:       date,
		OutputPath: outputPath,
	}

	issue, err := p.Resolver.Resolve(date, w)
	if err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("resolving issue for %s: %w", date.Format("2006-01-02"), err)
	}
	result.PagesTotal = len(issue.Pages)
	fmt.Fprintf(w, "resolved %d pages for %s\n", len(issue.Pages), date.Format("2006-01-02"))

	result.State = StateFetching
	fetched := p.Fetcher.FetchIssue(issue, w)
	result.PagesFetched = len(fetched.Pages)
	result.Failures = fetched.Failures
	for _, f := range fetched.Failures {
		result.warn(w, "page %s skipped: %s", f.Key, f.Reason)
	}

	result.State = StateMerging
	if fetched.AllFailed() {
		result.State = StateFailed
		return result, fmt.Errorf("%w (%d attempted)", ErrNoPages, result.PagesTotal)
	}

	document, err := merge.Pages(fetched.Pages)
	if err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("merging pages: %w", err)
	}

	if p.Compressor != nil {
		result.State = StateCompressing
		compressed, err := p.Compressor.Compress(document)
		switch {
		case err != nil:
			result.warn(w, "compression failed, keeping uncompressed output: %v", err)
		case len(compressed) < len(document):
			fmt.Fprintf(w, "compressed %d -> %d bytes\n", len(document), len(compressed))
			document = compressed
			result.Compressed = true
		default:
			fmt.Fprintf(w, "compression gained nothing, keeping original\n")
		}
	}

	if err := os.WriteFile(outputPath, document, 0o644); err != nil {
		result.State = StateFailed
		return result, fmt.Errorf("writing %s: %w", outputPath, err)
	}
	result.Bytes = int64(len(document))

	if p.WriteManifest {
		if err := writeManifest(result, fetched.Pages); err != nil {
			result.warn(w, "writing manifest: %v", err)
		}
	}

	if len(result.Failures) > 0 {
		result.State = StateDonePartial
	} else {
		result.State = StateDone
	}
	fmt.Fprintf(w, "wrote %s (%d/%d pages, %d bytes)\n",
		outputPath, result.PagesFetched, result.PagesTotal, result.Bytes)
	return result, nil
}
