// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// PageKey identifies one page of an issue and defines its position in the
// merged document. Ordering is ascending (Section, Page).
type PageKey struct {
	// Section is the zero-based index of the edition section.
	Section int `json:"section" yaml:"section"`

	// Page is the one-based page number within the section.
	Page int `json:"page" yaml:"page"`
}

// Less reports whether k sorts before other.
func (k PageKey) Less(other PageKey) bool {
	if k.Section != other.Section {
		return k.Section < other.Section
	}
	return k.Page < other.Page
}

// String renders the key as "section.page", e.g. "0.01".
func (k PageKey) String() string {
	return fmt.Sprintf("%d.%02d", k.Section, k.Page)
}

// Page is one section-page unit of an issue.
type Page struct {
	// Key is the (section, page) ordering key.
	Key PageKey `json:"key" yaml:"key"`

	// URL is the source URL of the page PDF.
	URL string `json:"url" yaml:"url"`

	// Content holds the downloaded PDF bytes; nil until fetched.
	Content []byte `json:"-" yaml:"-"`
}

// Issue is one day's complete publication: an ordered sequence of pages.
// It is constructed once per run by the resolver and discarded afterwards.
type Issue struct {
	// Date is the publication date (time component ignored).
	Date time.Time `json:"date" yaml:"date"`

	// Pages is strictly ordered by Key, keys unique.
	Pages []Page `json:"pages" yaml:"pages"`
}

// PageFailure records one page that could not be fetched. Failed pages are
// excluded from the merged output but never abort the run.
type PageFailure struct {
	// Key identifies the failed page.
	Key PageKey `json:"key" yaml:"key"`

	// URL is the page URL that failed.
	URL string `json:"url" yaml:"url"`

	// Reason is the error message recorded for the failure.
	Reason string `json:"reason" yaml:"reason"`
}
