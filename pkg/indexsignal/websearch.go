package indexsignal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"snapback/pkg/domain"
)

// Engine describes one search engine's scrape heuristics: where to send a
// site: query and how to read the result page. The pattern lists are a
// best-effort layer that degrades when upstream markup changes; the marker
// selector decides whether an unmatched page still counts as a real results
// page.
type Engine struct {
	// Name identifies the engine in verdicts, logs and metrics.
	Name string
	// QueryURL is a format string receiving the escaped site: query.
	QueryURL string
	// Marker is a goquery selector present on genuine result pages.
	Marker string
	// NoResults patterns, matched against the page text first; a hit is a
	// definitive Absent with zero pages.
	NoResults []*regexp.Regexp
	// Counts patterns; the first submatch is the result-count figure and a
	// hit is a definitive Present with that count.
	Counts []*regexp.Regexp
}

// GoogleEngine scrapes Google web search.
func GoogleEngine() Engine {
	return Engine{
		Name:     "google",
		QueryURL: "https://www.google.com/search?q=%s&num=10&hl=en",
		Marker:   "#search",
		NoResults: []*regexp.Regexp{
			regexp.MustCompile(`(?i)did not match any documents`),
		},
		Counts: []*regexp.Regexp{
			regexp.MustCompile(`(?i)about\s+([\d,.\x{00a0}\s]+)\s+results?`),
			regexp.MustCompile(`(?i)page \d+ of (?:about )?([\d,.\x{00a0}\s]+)\s+results?`),
		},
	}
}

// BingEngine scrapes Bing web search.
func BingEngine() Engine {
	return Engine{
		Name:     "bing",
		QueryURL: "https://www.bing.com/search?q=%s&setlang=en",
		Marker:   "#b_results",
		NoResults: []*regexp.Regexp{
			regexp.MustCompile(`(?i)there are no results for`),
		},
		Counts: []*regexp.Regexp{
			regexp.MustCompile(`(?i)([\d,.\x{00a0}\s]+)\s+results`),
		},
	}
}

// WebSearch is a fallback index source that scrapes a search engine's result
// page for a site:<domain> query.
type WebSearch struct {
	httpClient *http.Client
	engine     Engine
	userAgent  string
}

// NewWebSearch constructs a WebSearch source for the given engine. The user
// agent should be a browser string; engines serve reduced pages to obvious
// bots.
func NewWebSearch(httpClient *http.Client, engine Engine, userAgent string) *WebSearch {
	return &WebSearch{
		httpClient: httpClient,
		engine:     engine,
		userAgent:  userAgent,
	}
}

// Name identifies the engine this source scrapes.
func (s *WebSearch) Name() string { return s.engine.Name }

// Probe fetches the engine's result page for site:<name> and applies the
// engine's patterns to the extracted page text: no-result phrasing first
// (Absent, zero pages), then count extraction (Present, that count). A page
// that matches neither but carries the engine's results marker defaults to
// Present with an unknown page count. Anything else is an abstention.
func (s *WebSearch) Probe(ctx context.Context, name string) (domain.IndexVerdict, error) {
	target := fmt.Sprintf(s.engine.QueryURL, url.QueryEscape("site:"+name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return domain.IndexVerdict{}, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return domain.IndexVerdict{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.IndexVerdict{}, fmt.Errorf("search fetch failed (%d)", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return domain.IndexVerdict{}, fmt.Errorf("could not parse result page: %w", err)
	}

	text := doc.Text()

	for _, re := range s.engine.NoResults {
		if re.MatchString(text) {
			return domain.IndexVerdict{
				Indexed:        domain.IndexAbsent,
				EstimatedPages: intPtr(0),
				Source:         s.Name(),
			}, nil
		}
	}

	for _, re := range s.engine.Counts {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if count, ok := parseCount(m[1]); ok {
			return domain.IndexVerdict{
				Indexed:        domain.IndexPresent,
				EstimatedPages: intPtr(count),
				Source:         s.Name(),
			}, nil
		}
	}

	if doc.Find(s.engine.Marker).Length() > 0 {
		// A real results page with results we could not count.
		return domain.IndexVerdict{
			Indexed: domain.IndexPresent,
			Source:  s.Name(),
		}, nil
	}

	return domain.IndexVerdict{}, errors.New("unrecognizable result page")
}

// Ensure WebSearch conforms to the Source interface at compile time.
var _ Source = (*WebSearch)(nil)

// parseCount extracts an integer from a result-count figure, tolerating the
// thousand separators engines localize ("1,234", "1.234", "1 234").
func parseCount(s string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}

		return -1
	}, s)
	if digits == "" {
		return 0, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}

	return n, true
}
