// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge concatenates fetched page PDFs into one output document.
// Output page order is always ascending (section, page), whatever order the
// pages arrive in.
package merge

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/wangwllu/peoples-daily/pkg/types"
)

// ErrNoPages indicates there was nothing to merge.
var ErrNoPages = errors.New("no pages to merge")

// Pages merges the given pages into a single PDF and returns its bytes.
// Input order does not matter: pages are sorted by key before merging.
// Pages without content are skipped.
func Pages(pages []types.Page) ([]byte, error) {
	ordered := make([]types.Page, 0, len(pages))
	for _, p := range pages {
		if len(p.Content) > 0 {
			ordered = append(ordered, p)
		}
	}
	if len(ordered) == 0 {
		return nil, ErrNoPages
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Key.Less(ordered[j].Key)
	})

	readers := make([]io.ReadSeeker, len(ordered))
	for i, p := range ordered {
		readers[i] = bytes.NewReader(p.Content)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		return nil, fmt.Errorf("merging %d pages: %w", len(ordered), err)
	}
	return out.Bytes(), nil
}

// PageCount reports the number of pages in a merged document. Used by tests
// and the pipeline's verbose summary.
func PageCount(pdf []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return n, nil
}
