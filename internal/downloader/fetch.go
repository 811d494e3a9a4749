package downloader

import (
	"context"
	"log/slog"

	"github.com/jaki95/eventseq/internal/storage"
)

// Fetch crawls indexURL and downloads every file it links to into raw_data/.
// Files already present are counted as existing; a failed download is logged
// and the run continues. progressCallback may be nil.
func Fetch(ctx context.Context, crawler *Crawler, d Downloader, indexURL string, progressCallback ProgressCallback) (*Result, error) {
	links, err := crawler.Crawl(ctx, indexURL)
	if err != nil {
		return nil, err
	}

	res := &Result{Found: len(links)}
	for i, link := range links {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if !d.SupportsURL(link) {
			continue
		}

		if d.Exists(link, storage.RawDir) {
			res.Existing++
			report(progressCallback, i+1, len(links), "exists "+link)
			continue
		}

		p, err := d.Download(ctx, link, storage.RawDir)
		if err != nil {
			slog.Warn("download failed", "url", link, "error", err)
			res.Failed = append(res.Failed, link)
			report(progressCallback, i+1, len(links), "failed "+link)
			continue
		}
		res.Downloaded = append(res.Downloaded, p)
		report(progressCallback, i+1, len(links), "downloaded "+p)
	}

	slog.Info("download finished", "found", res.Found, "downloaded", len(res.Downloaded), "existing", res.Existing, "failed", len(res.Failed))
	return res, nil
}

func report(cb ProgressCallback, done, total int, msg string) {
	if cb == nil || total == 0 {
		return
	}
	cb(100*done/total, msg, nil)
}
