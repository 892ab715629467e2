// Package scraper handles operations relating to web scraping, cookie gathering, etc.
package scraper

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"tokbarr/internal/domain/consts"
	"tokbarr/internal/logging"

	"github.com/gocolly/colly"
	"golang.org/x/net/publicsuffix"
)

// PageMeta holds metadata scraped from a video page before download.
type PageMeta struct {
	Title        string
	ThumbnailURL string
}

type Scraper struct {
	cookies *CookieManager
}

func NewScraper(cookieFilePath string) *Scraper {
	return &Scraper{
		cookies: NewCookieManager(cookieFilePath),
	}
}

// ScrapeMeta visits the video page and pulls the OpenGraph title and
// thumbnail URL. Failures are soft, the download proceeds without metadata.
func (s *Scraper) ScrapeMeta(pageURL string) (*PageMeta, error) {
	collector := colly.NewCollector()
	collector.SetRequestTimeout(consts.ScrapeTimeout)

	cookies, err := s.cookies.GetCookies(pageURL)
	if err != nil {
		logging.D(1, "No cookies for %q, scraping without: %v", pageURL, err)
	}
	if len(cookies) > 0 {
		if err := collector.SetCookies(pageURL, cookies); err != nil {
			return nil, fmt.Errorf("failed to set cookies for %q: %w", pageURL, err)
		}
	}

	meta := &PageMeta{}

	collector.OnHTML(`meta[property="og:title"]`, func(e *colly.HTMLElement) {
		if meta.Title == "" {
			meta.Title = strings.TrimSpace(e.Attr("content"))
		}
	})
	collector.OnHTML(`meta[property="og:image"]`, func(e *colly.HTMLElement) {
		if meta.ThumbnailURL == "" {
			meta.ThumbnailURL = e.Attr("content")
		}
	})
	collector.OnHTML("title", func(e *colly.HTMLElement) {
		if meta.Title == "" {
			meta.Title = strings.TrimSpace(e.Text)
		}
	})

	if err := collector.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("error visiting webpage (%s): %w", pageURL, err)
	}
	collector.Wait()

	logging.D(2, "Scraped metadata for %q: title=%q thumbnail=%q", pageURL, meta.Title, meta.ThumbnailURL)
	return meta, nil
}

// FetchThumbnailBase64 downloads a thumbnail image and returns it base64 encoded.
func (s *Scraper) FetchThumbnailBase64(ctx context.Context, thumbURL string) (string, error) {
	if thumbURL == "" {
		return "", nil
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return "", fmt.Errorf("failed to create cookie jar: %w", err)
	}

	client := &http.Client{
		Jar:     jar,
		Timeout: consts.ScrapeTimeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch thumbnail %q: %w", thumbURL, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.E("Failed to close thumbnail response body: %v", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("thumbnail fetch returned status %d for %q", resp.StatusCode, thumbURL)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read thumbnail body: %w", err)
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}
