package indexsignal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"snapback/pkg/domain"
)

// Wayback is the primary index source: the Internet Archive's CDX API. It is
// free, unauthenticated and does not block bots, and the number of distinct
// archived URLs under a domain is a reliable proxy for historical SEO value.
type Wayback struct {
	httpClient *http.Client
	baseURL    string // CDX endpoint
	limit      int    // cap on returned rows
}

// NewWayback constructs a Wayback source against the given CDX endpoint,
// counting at most limit distinct archived URLs per domain.
func NewWayback(httpClient *http.Client, baseURL string, limit int) *Wayback {
	return &Wayback{
		httpClient: httpClient,
		baseURL:    baseURL,
		limit:      limit,
	}
}

// Name identifies the archive source in verdicts and reports.
func (w *Wayback) Name() string { return "archive" }

// Probe queries the CDX API for distinct archived URLs under the domain. The
// response is an array of rows whose first row is a header; the remaining row
// count is the page count. Zero archived pages is a definitive Absent, not an
// abstention.
func (w *Wayback) Probe(ctx context.Context, name string) (domain.IndexVerdict, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.baseURL, nil)
	if err != nil {
		return domain.IndexVerdict{}, fmt.Errorf("could not create request: %w", err)
	}

	query := url.Values{}
	query.Set("url", "*."+name)
	query.Set("matchType", "domain")
	query.Set("output", "json")
	query.Set("fl", "urlkey")
	query.Set("collapse", "urlkey")
	query.Set("limit", strconv.Itoa(w.limit))
	req.URL.RawQuery = query.Encode()

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return domain.IndexVerdict{}, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.IndexVerdict{}, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.IndexVerdict{}, fmt.Errorf("cdx query failed (%d): %s",
			resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var rows [][]string
	if err := json.Unmarshal(b, &rows); err != nil {
		return domain.IndexVerdict{}, fmt.Errorf("could not decode response: %w", err)
	}

	pages := len(rows) - 1
	if pages <= 0 {
		return domain.IndexVerdict{
			Indexed:        domain.IndexAbsent,
			EstimatedPages: intPtr(0),
			Source:         w.Name(),
		}, nil
	}

	return domain.IndexVerdict{
		Indexed:        domain.IndexPresent,
		EstimatedPages: intPtr(pages),
		Source:         w.Name(),
	}, nil
}

// Ensure Wayback conforms to the Source interface at compile time.
var _ Source = (*Wayback)(nil)

func intPtr(n int) *int { return &n }
