// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/wangwllu/peoples-daily/pkg/types"
)

// manifest is the YAML record written next to the output file: which pages
// made it into the document and which did not.
type manifest struct {
	Date         string              `yaml:"date"`
	Output       string              `yaml:"output"`
	GeneratedAt  string              `yaml:"generated_at"`
	PagesTotal   int                 `yaml:"pages_total"`
	PagesFetched int                 `yaml:"pages_fetched"`
	Compressed   bool                `yaml:"compressed"`
	Bytes        int64               `yaml:"bytes"`
	Pages        []types.Page        `yaml:"pages"`
	Failures     []types.PageFailure `yaml:"failures,omitempty"`
	Warnings     []string            `yaml:"warnings,omitempty"`
}

// ManifestPath derives the manifest filename from the output path.
func ManifestPath(outputPath string) string {
	return strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".manifest.yaml"
}

func writeManifest(result *Result, pages []types.Page) error {
	m := manifest{
		Date:         result.Date.Format("2006-01-02"),
		Output:       result.OutputPath,
		GeneratedAt:  time.Now().UTC().Format(time.RFC3339),
		PagesTotal:   result.PagesTotal,
		PagesFetched: result.PagesFetched,
		Compressed:   result.Compressed,
		Bytes:        result.Bytes,
		Pages:        pages,
		Failures:     result.Failures,
		Warnings:     result.Warnings,
	}

	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	if err := os.WriteFile(ManifestPath(result.OutputPath), data, 0o644); err != nil {
		return fmt.Errorf("writing manifest file: %w", err)
	}
	return nil
}
