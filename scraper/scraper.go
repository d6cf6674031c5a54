// scraper/scraper.go
package scraper

import (
	"log"
	"sync"

	"github.com/jmtz/meteopipe/models"
)

// Outcome is the result of fetching and extracting one target.
type Outcome struct {
	Code   int
	Fields models.Fields
}

// Scraper runs fetch-and-extract over an ordered list of targets.
type Scraper struct {
	fetcher Fetcher
}

func New(fetcher Fetcher) *Scraper {
	return &Scraper{fetcher: fetcher}
}

// Scrape fetches every target concurrently and returns one outcome per
// target, in the same order as the input regardless of completion order.
// A failed target never affects its siblings: connection-level failures are
// recorded as StatusConnError with nil fields, non-200 responses keep their
// status code with nil fields.
func (s *Scraper) Scrape(targets []string) []Outcome {
	outcomes := make([]Outcome, len(targets))

	var wg sync.WaitGroup
	for i, url := range targets {
		i, url := i, url
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = s.scrapeOne(url)
		}()
	}
	wg.Wait()

	return outcomes
}

func (s *Scraper) scrapeOne(url string) Outcome {
	code, body, err := s.fetcher.Fetch(url)
	if err != nil {
		log.Printf("WARN Scraper: fetch failed for %s: %v", url, err)
		return Outcome{Code: StatusConnError}
	}
	if code != 200 || body == "" {
		return Outcome{Code: code}
	}

	fields, err := Extract(body)
	if err != nil {
		log.Printf("WARN Scraper: extraction failed for %s: %v", url, err)
		return Outcome{Code: code}
	}
	return Outcome{Code: code, Fields: fields}
}
