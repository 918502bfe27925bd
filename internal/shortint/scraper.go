package shortint

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/kmorrow/papertrade/internal/contracts"
	"github.com/kmorrow/papertrade/pkg/httputil"
	"github.com/kmorrow/papertrade/pkg/logger"
)

// Scraper extracts short-interest percentages from an HTML table of
// the form <tr><td>TICKER</td><td>24.5%</td>...</tr>. The squeeze
// factor is the only consumer; a failed scrape degrades to a zero
// short-interest channel upstream.
type Scraper struct {
	client  *httputil.Client
	pageURL string
	logger  *logger.Logger
}

// NewScraper creates a scraper for the given page URL.
func NewScraper(pageURL string, client *httputil.Client, log *logger.Logger) *Scraper {
	return &Scraper{client: client, pageURL: pageURL, logger: log}
}

// ShortInterest returns short interest (percent of float) for the
// requested tickers. Tickers absent from the page are simply missing
// from the result.
func (s *Scraper) ShortInterest(ctx context.Context, tickers []string) (map[string]float64, error) {
	resp, err := s.client.Get(ctx, s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("short interest fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("short interest page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("short interest parse failed: %w", err)
	}

	wanted := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		wanted[t] = true
	}

	out := make(map[string]float64)
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		ticker := contracts.NormalizeTicker(cells.Eq(0).Text())
		if !wanted[ticker] {
			return
		}

		raw := strings.TrimSuffix(strings.TrimSpace(cells.Eq(1).Text()), "%")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return
		}
		out[ticker] = value
	})

	s.logger.WithFields(map[string]interface{}{
		"requested": len(tickers),
		"found":     len(out),
	}).Debug("Scraped short interest")
	return out, nil
}
