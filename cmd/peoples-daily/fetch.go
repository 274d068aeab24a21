package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wangwllu/peoples-daily/internal/compress"
	"github.com/wangwllu/peoples-daily/internal/fetch"
	"github.com/wangwllu/peoples-daily/internal/history"
	"github.com/wangwllu/peoples-daily/internal/httputil"
	"github.com/wangwllu/peoples-daily/internal/pipeline"
	"github.com/wangwllu/peoples-daily/internal/resolve"
	"github.com/wangwllu/peoples-daily/pkg/types"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxPages     = 40
	defaultArchiveStart = "2020-07-01"

	// defaultUserAgent mimics a desktop browser; the publisher rejects
	// obvious bot agents.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

	defaultFilenamePrefix = "人民日报"
)

var defaultBaseURLs = []string{"https://paper.people.com.cn/rmrb/pc/layout/"}

var defaultSections = []types.SectionConfig{
	{Name: "rmrb", LayoutPattern: "{yyyymm}/{dd}/node_{page02}.html"},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download one day's pages and merge them into a single PDF",
	Long: `Fetch resolves the date to the day's page PDFs, downloads each page with a
single attempt, and merges the successes in page order. Pages that fail to
download are skipped with a warning; the run only fails when the date is
unsupported or no page at all could be fetched.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringP("date", "d", "", `issue date, e.g. "2025-10-15" (default: today)`)
	fetchCmd.Flags().StringP("output", "o", "", "output PDF path (default derived from the date)")
	fetchCmd.Flags().Bool("compress", false, "shrink the output with Ghostscript when available")
	fetchCmd.Flags().Bool("manifest", false, "write a YAML run manifest next to the output")
	fetchCmd.Flags().Duration("timeout", 0, "per-request HTTP timeout (default 10s)")
	fetchCmd.Flags().Duration("delay", 0, "delay between consecutive page downloads (default 0)")
	fetchCmd.Flags().Int("max-pages", 0, "upper bound on pages per section (default 40)")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	date, err := issueDate(cmd)
	if err != nil {
		return err
	}

	cfg := pipelineConfig(cmd)
	outputPath, _ := cmd.Flags().GetString("output")
	if outputPath == "" {
		outputPath = fmt.Sprintf("%s_%s.pdf", cfg.Edition.FilenamePrefix, date.Format("2006-01-02"))
	}

	statusWriter := io.Writer(io.Discard)
	if verbose {
		statusWriter = os.Stderr
	}

	clients := httputil.Clients(cfg.Fetch.Timeout)
	p := &pipeline.Pipeline{
		Resolver: resolve.New(clients, cfg.Edition),
		Fetcher:  fetch.New(clients, cfg.Fetch),
	}
	if wantManifest, _ := cmd.Flags().GetBool("manifest"); wantManifest {
		p.WriteManifest = true
	}

	if wantCompress, _ := cmd.Flags().GetBool("compress"); wantCompress {
		gs, err := compress.Detect()
		switch {
		case errors.Is(err, compress.ErrNotFound):
			// Absent tool is a silent skip, not an error.
			fmt.Fprintln(statusWriter, "ghostscript not found, skipping compression")
		case err != nil:
			return err
		default:
			fmt.Fprintf(statusWriter, "compressing with %s\n", gs.Name())
			p.Compressor = gs
		}
	}

	result, err := p.Run(date, outputPath, statusWriter)
	recordRun(cfg.History, result, statusWriter)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %d/%d pages -> %s\n",
		result.State, result.PagesFetched, result.PagesTotal, result.OutputPath)
	return nil
}

// issueDate parses --date, defaulting to today.
func issueDate(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("date")
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want e.g. 2025-10-15): %w", raw, err)
	}
	return date, nil
}

// pipelineConfig merges viper config, env, and flag overrides into the run
// configuration. Flags win over config values; config values win over the
// built-in People's Daily defaults.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	viper.SetDefault("edition.base_urls", defaultBaseURLs)
	viper.SetDefault("edition.archive_start", defaultArchiveStart)
	viper.SetDefault("edition.max_pages", defaultMaxPages)
	viper.SetDefault("edition.filename_prefix", defaultFilenamePrefix)
	viper.SetDefault("http.user_agent", defaultUserAgent)

	var sections []types.SectionConfig
	if err := viper.UnmarshalKey("edition.sections", &sections); err != nil || len(sections) == 0 {
		sections = defaultSections
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("http.timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	maxPages, _ := cmd.Flags().GetInt("max-pages")
	if maxPages == 0 {
		maxPages = viper.GetInt("edition.max_pages")
	}

	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = viper.GetDuration("fetch.download_delay")
	}

	httpCfg := types.HTTPConfig{
		Timeout:   timeout,
		UserAgent: viper.GetString("http.user_agent"),
	}

	return types.PipelineConfig{
		Edition: types.EditionConfig{
			HTTPConfig:     httpCfg,
			BaseURLs:       splitBaseURLs(viper.GetStringSlice("edition.base_urls")),
			Sections:       sections,
			ArchiveStart:   viper.GetString("edition.archive_start"),
			MaxPages:       maxPages,
			FilenamePrefix: viper.GetString("edition.filename_prefix"),
		},
		Fetch: types.FetchConfig{
			HTTPConfig:    httpCfg,
			DownloadDelay: delay,
		},
		History: types.HistoryConfig{
			Path: historyPath(),
		},
	}
}

// splitBaseURLs expands comma-separated entries. The env override passes the
// whole mirror list as one value, and viper hands that through as a single
// slice element.
func splitBaseURLs(raw []string) []string {
	var urls []string
	for _, entry := range raw {
		for _, u := range strings.Split(entry, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}

// historyPath resolves the run ledger location: explicit config first, then
// the user cache directory. Empty disables the ledger.
func historyPath() string {
	if p := viper.GetString("history.path"); p != "" {
		return p
	}
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(cacheDir, "peoples-daily", "history.db")
}

// recordRun appends the run to the ledger. Ledger problems are warnings at
// most; they never change the run's outcome.
func recordRun(cfg types.HistoryConfig, result *pipeline.Result, w io.Writer) {
	if cfg.Path == "" || result == nil {
		return
	}

	store, err := history.Open(cfg.Path)
	if err != nil {
		fmt.Fprintf(w, "warning: opening run ledger: %v\n", err)
		return
	}
	defer store.Close()

	run := history.Run{
		Date:         result.Date.Format("2006-01-02"),
		OutputPath:   result.OutputPath,
		PagesTotal:   result.PagesTotal,
		PagesFetched: result.PagesFetched,
		Bytes:        result.Bytes,
		Compressed:   result.Compressed,
		State:        result.State.String(),
	}
	if err := store.Record(run); err != nil {
		fmt.Fprintf(w, "warning: recording run: %v\n", err)
	}
}
