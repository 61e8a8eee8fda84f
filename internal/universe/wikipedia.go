package universe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// WikipediaSource reads index constituents from a Wikipedia listing page
// (an HTML table with the ticker in the first column and the security name
// in the second).
type WikipediaSource struct {
	URL    string
	Client *http.Client
}

// NewWikipediaSource creates a source with optional proxy support.
func NewWikipediaSource(pageURL, proxyURL string) *WikipediaSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &WikipediaSource{
		URL: pageURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *WikipediaSource) Name() string { return "wikipedia" }

// List fetches and parses the constituents table. Any fetch or parse failure
// wraps ErrUnavailable.
func (s *WikipediaSource) List(ctx context.Context) ([]Constituent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch constituents page: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: constituents page status %d", ErrUnavailable, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse constituents page: %v", ErrUnavailable, err)
	}
	members, err := ParseConstituents(doc)
	if err != nil {
		return nil, err
	}
	return members, nil
}

// ParseConstituents extracts constituents from the first wikitable in the
// document. Tickers use dashes for share-class dots (BRK.B -> BRK-B), the
// form market-data providers expect.
func ParseConstituents(doc *goquery.Document) ([]Constituent, error) {
	table := doc.Find("table.wikitable").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: no constituents table found", ErrUnavailable)
	}

	var members []Constituent
	seen := make(map[string]bool)
	table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return // header row
		}
		symbol := strings.TrimSpace(cells.Eq(0).Text())
		name := strings.TrimSpace(cells.Eq(1).Text())
		if symbol == "" || seen[symbol] {
			return
		}
		seen[symbol] = true
		members = append(members, Constituent{
			Symbol: strings.ReplaceAll(symbol, ".", "-"),
			Name:   name,
		})
	})
	if len(members) == 0 {
		return nil, fmt.Errorf("%w: constituents table has no rows", ErrUnavailable)
	}
	return members, nil
}
