package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request timeout. A request still running when it
	// expires counts as a failed fetch for that page.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests. The
	// publisher serves PDFs to browsers, so the default mimics one.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SectionConfig describes one section of an edition. The People's Daily web
// edition is a single section; other publishers may define several.
type SectionConfig struct {
	// Name labels the section (informational, used in status output).
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// LayoutPattern is the token template for the section's per-page layout
	// index URL, relative to a base URL. Recognized tokens: {yyyy}, {yyyymm},
	// {yyyymmdd}, {mm}, {dd}, {page}, {page02}.
	LayoutPattern string `json:"layout_pattern" yaml:"layout_pattern" mapstructure:"layout_pattern"`
}

// EditionConfig holds the publisher-specific URL scheme and archive bounds
// for the resolver. The scheme is configuration, not code: pointing the
// resolver at a different publisher means supplying different patterns.
type EditionConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURLs lists layout mirror roots tried in order for each page.
	BaseURLs []string `json:"base_urls" yaml:"base_urls"`

	// Sections lists the edition sections in output order.
	Sections []SectionConfig `json:"sections" yaml:"sections"`

	// ArchiveStart is the first date the digital archive covers, in
	// "2006-01-02" form. Earlier dates are resolution errors.
	ArchiveStart string `json:"archive_start" yaml:"archive_start"`

	// MaxPages bounds the layout walk per section (default 40).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// FilenamePrefix is the stem of the default output filename.
	FilenamePrefix string `json:"filename_prefix" yaml:"filename_prefix"`
}

// FetchConfig holds settings for the page download stage.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadDelay is the pause between consecutive page downloads
	// (default 0). Kept configurable to stay polite to the publisher.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay"`
}

// HistoryConfig holds settings for the run ledger.
type HistoryConfig struct {
	// Path is the SQLite database file. Empty disables the ledger.
	Path string `json:"path" yaml:"path"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	Edition EditionConfig `json:"edition" yaml:"edition"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	History HistoryConfig `json:"history" yaml:"history"`
}
