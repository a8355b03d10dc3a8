// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

// Package enrich looks up a short business description for the companies
// shown on the stock page.
//
// The lookup scrapes a public profile page and is strictly best effort: any
// failure to reach or parse the page yields a Profile with Status
// "unavailable" and a Reason, never an error. Only requests for a ticker
// outside the supported list fail, with models.ErrLookupMiss.
package enrich

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/mlboard/internal/cache"
	"github.com/tomtom215/mlboard/internal/config"
	"github.com/tomtom215/mlboard/internal/logging"
	"github.com/tomtom215/mlboard/internal/metrics"
	"github.com/tomtom215/mlboard/internal/models"
)

// Status of a profile lookup.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// Company is a supported ticker.
type Company struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Companies are the tickers the dashboard offers, in display order.
var Companies = []Company{
	{Ticker: "AAPL", Name: "Apple Inc."},
	{Ticker: "MSFT", Name: "Microsoft Corporation"},
	{Ticker: "GOOG", Name: "Alphabet Inc."},
	{Ticker: "AMZN", Name: "Amazon.com, Inc"},
	{Ticker: "TSLA", Name: "Tesla, Inc."},
	{Ticker: "KO", Name: "Coca-Cola Company"},
	{Ticker: "NFLX", Name: "Netflix, Inc."},
}

// Lookup returns the supported company for ticker.
func Lookup(ticker string) (Company, bool) {
	for _, c := range Companies {
		if c.Ticker == ticker {
			return c, true
		}
	}
	return Company{}, false
}

// Profile is the outcome of a lookup.
type Profile struct {
	Company
	Status      Status `json:"status"`
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description,omitempty"`
}

// descriptionSelectors are tried in order against the profile page.
var descriptionSelectors = []string{
	`section[data-testid="description"] p`,
	`section.quote-sub-section p`,
	`p.Mt\(15px\).Lh\(1\.6\)`,
}

// Client fetches company profiles.
type Client struct {
	enabled bool
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger

	profiles *cache.Cache[Profile]
}

// NewClient builds a client from cfg. A disabled client answers every
// supported ticker with an unavailable profile without any network access.
func NewClient(cfg config.EnrichConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		enabled:  cfg.Enabled,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(rps), 1),
		logger:   logging.WithComponent("enrich"),
		profiles: cache.New[Profile](cfg.CacheTTL),
	}
}

// Profile returns the profile of ticker. Successful lookups are reused for
// the configured cache TTL; unavailable ones are retried on the next call.
func (c *Client) Profile(ctx context.Context, ticker string) (Profile, error) {
	company, ok := Lookup(ticker)
	if !ok {
		return Profile{}, fmt.Errorf("%w: unsupported ticker %q", models.ErrLookupMiss, ticker)
	}
	if !c.enabled {
		return unavailable(company, "enrichment disabled"), nil
	}

	if p, ok := c.profiles.Get(ticker); ok {
		return p, nil
	}

	p := c.fetch(ctx, company)
	metrics.RecordEnrichment(string(p.Status))
	if p.Status == StatusAvailable {
		c.profiles.Set(ticker, p)
	} else {
		c.logger.Warn().Str("ticker", ticker).Str("reason", p.Reason).Msg("Company profile unavailable")
	}
	return p, nil
}

func (c *Client) fetch(ctx context.Context, company Company) Profile {
	if err := c.limiter.Wait(ctx); err != nil {
		return unavailable(company, "rate limited: "+err.Error())
	}

	pageURL := fmt.Sprintf("%s/%s/profile?p=%s", c.baseURL, url.PathEscape(company.Ticker), url.QueryEscape(company.Ticker))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return unavailable(company, "build request: "+err.Error())
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) mlboard/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return unavailable(company, "request failed: "+err.Error())
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return unavailable(company, "profile page returned "+resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return unavailable(company, "parse page: "+err.Error())
	}
	desc := Description(doc)
	if desc == "" {
		return unavailable(company, "no description on profile page")
	}
	return Profile{Company: company, Status: StatusAvailable, Description: desc}
}

// Description extracts the business summary from a profile page, or ""
// when none of the known layouts match.
func Description(doc *goquery.Document) string {
	for _, sel := range descriptionSelectors {
		var text string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text = strings.Join(strings.Fields(s.Text()), " ")
			return text == ""
		})
		if text != "" {
			return text
		}
	}
	return ""
}

func unavailable(company Company, reason string) Profile {
	return Profile{Company: company, Status: StatusUnavailable, Reason: reason}
}
