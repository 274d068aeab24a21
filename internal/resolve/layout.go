// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ExpandPattern substitutes date and page tokens into a URL pattern.
// Recognized tokens: {yyyy}, {yyyymm}, {yyyymmdd}, {mm}, {dd}, {page},
// {page02}. Unknown tokens pass through unchanged so a misconfigured
// pattern fails visibly in the resulting URL rather than silently.
func ExpandPattern(pattern string, date time.Time, page int) string {
	replacer := strings.NewReplacer(
		"{yyyymmdd}", date.Format("20060102"),
		"{yyyymm}", date.Format("200601"),
		"{yyyy}", date.Format("2006"),
		"{mm}", date.Format("01"),
		"{dd}", date.Format("02"),
		"{page02}", fmt.Sprintf("%02d", page),
		"{page}", fmt.Sprintf("%d", page),
	)
	return replacer.Replace(pattern)
}

// extractPDFHref returns the first anchor href ending in ".pdf" from a
// layout index page.
func extractPDFHref(html []byte) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", false
	}

	var href string
	doc.Find("a[href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		h, _ := s.Attr("href")
		if strings.HasSuffix(strings.ToLower(strings.TrimSpace(h)), ".pdf") {
			href = strings.TrimSpace(h)
			return false
		}
		return true
	})
	return href, href != ""
}

// resolveHref resolves a possibly relative PDF href against its layout URL.
func resolveHref(layoutURL, href string) (string, error) {
	base, err := url.Parse(layoutURL)
	if err != nil {
		return "", fmt.Errorf("parsing layout URL %s: %w", layoutURL, err)
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing href %s: %w", href, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// joinURL concatenates a base URL and a relative pattern without doubling
// the separating slash.
func joinURL(base, rel string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(rel, "/")
}
