package kugou

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"music-api-go/logcolors"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	// DefaultBaseURL is the Kugou proxy endpoint serving both list and detail mode
	DefaultBaseURL = "https://www.hhlqilongzhu.cn/api/dg_kugouSQ.php"

	// Request defaults
	DefaultMaxResults        = "100"
	DefaultQuality           = QualityViperAtmos
	DefaultDetailResultCount = "100"
	DefaultCoverPath         = "./img/4k.png"

	defaultTimeout = 10 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	responseFormat = "json"
)

// Options configures a Client. Zero values fall back to the package defaults.
type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	DetailResultCount string
	DefaultCoverPath  string
}

// Client talks to the upstream search endpoint
type Client struct {
	baseURL           string
	httpClient        *http.Client
	detailResultCount string
	defaultCoverPath  string
}

// NewClient creates a new upstream client
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.DetailResultCount == "" {
		opts.DetailResultCount = DefaultDetailResultCount
	}
	if opts.DefaultCoverPath == "" {
		opts.DefaultCoverPath = DefaultCoverPath
	}

	return &Client{
		baseURL:           opts.BaseURL,
		httpClient:        opts.HTTPClient,
		detailResultCount: opts.DetailResultCount,
		defaultCoverPath:  opts.DefaultCoverPath,
	}
}

// Search returns the playable songs matching req.Query.
// A body without a usable data array yields an empty result, not an error.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]SongSummary, error) {
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	if req.MaxResults == "" {
		req.MaxResults = DefaultMaxResults
	}
	if req.Quality == "" {
		req.Quality = DefaultQuality
	}

	params := url.Values{}
	params.Set("msg", req.Query)
	params.Set("n", req.Index)
	params.Set("num", req.MaxResults)
	params.Set("type", responseFormat)
	params.Set("quality", req.Quality)

	log.Debugf("%s Searching: %s (num: %s, quality: %s)", logcolors.LogSearch, req.Query, req.MaxResults, req.Quality)

	body, err := c.get(ctx, "list", params)
	if err != nil {
		log.Errorf("%s Failed to fetch song list: %v", logcolors.LogSearch, err)
		return nil, err
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Errorf("%s Failed to parse song list: %v", logcolors.LogSearch, err)
		return nil, fmt.Errorf("failed to parse list response: %w", err)
	}

	songs := normalizeList(resp)
	log.Infof("%s Found %d playable songs for: %s", logcolors.LogSearch, len(songs), req.Query)
	return songs, nil
}

// GetDetail resolves the song at req.Index of the search for req.Query
func (c *Client) GetDetail(ctx context.Context, req DetailRequest) (*SongDetail, error) {
	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	if req.Index == "" {
		return nil, ErrMissingIndex
	}
	if req.Quality == "" {
		req.Quality = DefaultQuality
	}

	params := url.Values{}
	params.Set("msg", req.Query)
	params.Set("n", req.Index)
	params.Set("num", c.detailResultCount)
	params.Set("type", responseFormat)
	params.Set("quality", req.Quality)

	log.Debugf("%s Fetching detail: %s #%s (quality: %s)", logcolors.LogDetail, req.Query, req.Index, req.Quality)

	body, err := c.get(ctx, "detail", params)
	if err != nil {
		log.Errorf("%s Failed to fetch song detail: %v", logcolors.LogDetail, err)
		return nil, err
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		log.Errorf("%s Failed to parse song detail: %v", logcolors.LogDetail, err)
		return nil, fmt.Errorf("failed to parse detail response: %w", err)
	}

	detail, err := normalizeDetail(resp, c.defaultCoverPath)
	if err != nil {
		log.Errorf("%s %v (query: %s, n: %s)", logcolors.LogDetail, err, req.Query, req.Index)
		return nil, err
	}

	log.Infof("%s Resolved: %s - %s", logcolors.LogSuccess, detail.Title, detail.Artist)
	return detail, nil
}

// get performs one GET round trip and returns the raw body
func (c *Client) get(ctx context.Context, op string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warnf("%s %s request returned status %d", logcolors.LogUpstream, op, resp.StatusCode)
		return nil, &UpstreamError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
