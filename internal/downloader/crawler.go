package downloader

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly"
)

// CrawlerOptions configures an index crawl.
type CrawlerOptions struct {
	// Extensions of the files to collect, e.g. ".mid".
	Extensions []string
	// MaxDepth bounds how many index pages deep the crawl follows links; 1
	// reads only the start page.
	MaxDepth  int
	UserAgent string
}

// Crawler walks index pages of one host and collects links to corpus files.
type Crawler struct {
	opts CrawlerOptions
}

func NewCrawler(opts CrawlerOptions) *Crawler {
	if opts.MaxDepth < 1 {
		opts.MaxDepth = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	return &Crawler{opts: opts}
}

// Crawl visits indexURL and returns the sorted, de-duplicated file links it
// finds. Links to other pages on the same host are followed up to MaxDepth.
func (c *Crawler) Crawl(ctx context.Context, indexURL string) ([]string, error) {
	start, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("invalid index url %q: %w", indexURL, err)
	}

	collector := colly.NewCollector(
		colly.MaxDepth(c.opts.MaxDepth),
		colly.UserAgent(c.opts.UserAgent),
		colly.Async(false),
	)

	var (
		mu      sync.Mutex
		found   = map[string]bool{}
		lastErr error
	)

	collector.OnError(func(r *colly.Response, err error) {
		slog.Warn("index request failed", "url", r.Request.URL.String(), "status", r.StatusCode, "error", err)
		mu.Lock()
		lastErr = err
		mu.Unlock()
	})

	collector.OnHTML("html", func(e *colly.HTMLElement) {
		if ctx.Err() != nil {
			return
		}
		for _, link := range Links(e.DOM, e.Request.URL) {
			if c.matches(link) {
				mu.Lock()
				found[link] = true
				mu.Unlock()
				continue
			}
			if isIndexPage(link) && sameHost(link, start) {
				e.Request.Visit(link)
			}
		}
	})

	if err := collector.Visit(start.String()); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", indexURL, err)
	}
	collector.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoLinks, lastErr)
		}
		return nil, ErrNoLinks
	}

	links := make([]string, 0, len(found))
	for l := range found {
		links = append(links, l)
	}
	sort.Strings(links)
	return links, nil
}

func (c *Crawler) matches(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, want := range c.opts.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}

func sameHost(link string, start *url.URL) bool {
	u, err := url.Parse(link)
	return err == nil && u.Host == start.Host
}

// isIndexPage reports whether a link looks like another listing page rather
// than a file.
func isIndexPage(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	ext := path.Ext(u.Path)
	return ext == "" || ext == ".html" || ext == ".htm" || strings.HasSuffix(u.Path, "/")
}

// Links resolves every anchor href below sel against base. Fragments are
// dropped; mailto and javascript links are ignored.
func Links(sel *goquery.Selection, base *url.URL) []string {
	var out []string
	sel.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
			return
		}
		u, err := base.Parse(href)
		if err != nil {
			return
		}
		u.Fragment = ""
		out = append(out, u.String())
	})
	return out
}
