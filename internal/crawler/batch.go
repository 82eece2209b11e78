package crawler

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"catalogstudio/internal/model"
)

// Scraper is satisfied by *gateway.Gateway.
type Scraper interface {
	ScrapeProductFromURL(ctx context.Context, productURL string) (model.ScrapedProduct, error)
}

type scrapeResult struct {
	url     string
	product model.ScrapedProduct
	err     error
}

// ScrapeBatch scrapes urls with a bounded pool of workers. handler runs on
// the calling goroutine, one product at a time, and receives the URL that
// was requested alongside the product. A product whose payload carried no
// url gets the requested one. A failed URL is logged and skipped; the
// number of failures is returned. Once ctx is done no further URL is
// dispatched.
func ScrapeBatch(ctx context.Context, s Scraper, urls []string, workers int, log *zap.Logger, handler func(url string, p model.ScrapedProduct)) int {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	jobs := make(chan string)
	results := make(chan scrapeResult)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range jobs {
				p, err := s.ScrapeProductFromURL(ctx, u)
				results <- scrapeResult{url: u, product: p, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, u := range urls {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- u:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	failed := 0
	for r := range results {
		if r.err != nil {
			failed++
			log.Warn("scrape failed", zap.String("url", r.url), zap.Error(r.err))
			continue
		}
		if r.product.URL == "" {
			r.product.URL = r.url
		}
		handler(r.url, r.product)
	}
	return failed
}
