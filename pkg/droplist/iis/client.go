// Package iis provides a droplist.Source implementation backed by the public
// Internetstiftelsen drop-list feeds (the registry operating .se and .nu).
package iis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"snapback/pkg/domain"
	"snapback/pkg/droplist"
	"snapback/pkg/serrors"
	"strings"
)

// Client fetches drop lists from the registry feeds and fulfills the
// droplist.Source interface. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs HTTP requests to the feeds
	seURL      string       // seURL is the .se feed endpoint
	nuURL      string       // nuURL is the .nu feed endpoint
	userAgent  string       // userAgent is sent with every feed request
}

// DropList fetches the complete pending-release list for the given TLD and
// maps it into drop records. The feed publishes one JSON document per
// namespace: {"data":[{"name":...,"release_at":...},...]}.
func (c *Client) DropList(ctx context.Context, tld domain.TLD) ([]domain.DropRecord, error) {
	endpoint, err := c.endpointFor(tld)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, serrors.With(serrors.ErrUnavailable,
			"drop list fetch failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var feed struct {
		Data []struct {
			Name      string `json:"name"`
			ReleaseAt string `json:"release_at"`
		} `json:"data"`
	}
	if err := json.Unmarshal(b, &feed); err != nil {
		return nil, fmt.Errorf("could not decode response: %w", err)
	}

	records := make([]domain.DropRecord, 0, len(feed.Data))
	for _, entry := range feed.Data {
		records = append(records, domain.DropRecord{
			Name:      entry.Name,
			ReleaseAt: entry.ReleaseAt,
			TLD:       tld,
		})
	}

	return records, nil
}

// endpointFor maps a TLD to its feed endpoint.
func (c *Client) endpointFor(tld domain.TLD) (string, error) {
	switch tld {
	case domain.TLDSe:
		return c.seURL, nil
	case domain.TLDNu:
		return c.nuURL, nil
	default:
		return "", serrors.With(serrors.ErrBadRequest, "unsupported tld: %s", tld)
	}
}

// Ensure Client conforms to the droplist.Source interface at compile time.
var _ droplist.Source = (*Client)(nil)

// New constructs a Client that uses the provided http.Client to fetch the
// per-namespace feed endpoints. The user agent should be a browser string;
// the feeds occasionally reject obvious bots.
func New(httpClient *http.Client, seURL, nuURL, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		seURL:      seURL,
		nuURL:      nuURL,
		userAgent:  userAgent,
	}
}
