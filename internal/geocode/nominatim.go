package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/freightlens/shipdedup/internal/model"
)

// Nominatim default settings. The retry count and base delay follow the
// original tool's geocoding behavior; the endpoint is the public OSM
// instance, which demands a descriptive User-Agent and modest request rates.
const (
	// DefaultEndpoint is the public Nominatim search endpoint.
	DefaultEndpoint = "https://nominatim.openstreetmap.org/search"

	// DefaultRetries is the number of attempts per address.
	DefaultRetries = 3

	// DefaultRetryDelay is the base delay doubled on each retry.
	DefaultRetryDelay = 2 * time.Second

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second
)

// NominatimClient geocodes addresses against a Nominatim HTTP endpoint.
//
// Design decision: The client is an injected collaborator with its own
// lifecycle owned by the caller, never module-level state. The original
// implementation kept a global geolocator instance, which made per-run
// configuration and testing impossible.
type NominatimClient struct {
	endpoint   string
	userAgent  string
	retries    int
	retryDelay time.Duration
	httpClient *http.Client
}

// NominatimOption configures a NominatimClient.
type NominatimOption func(*NominatimClient)

// WithEndpoint points the client at a non-default Nominatim instance,
// such as a self-hosted one or a test server.
func WithEndpoint(endpoint string) NominatimOption {
	return func(c *NominatimClient) {
		c.endpoint = endpoint
	}
}

// WithRetries sets the attempt count per address.
func WithRetries(n int) NominatimOption {
	return func(c *NominatimClient) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithRetryDelay sets the base backoff delay.
func WithRetryDelay(d time.Duration) NominatimOption {
	return func(c *NominatimClient) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) NominatimOption {
	return func(c *NominatimClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewNominatimClient creates a client identifying itself with userAgent.
// Nominatim's usage policy requires an identifying User-Agent; requests
// without one are rejected.
func NewNominatimClient(userAgent string, opts ...NominatimOption) *NominatimClient {
	c := &NominatimClient{
		endpoint:   DefaultEndpoint,
		userAgent:  userAgent,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// nominatimResult is one entry of the search response. lat and lon come
// back as strings in the Nominatim JSON format.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Geocode resolves one address, retrying transient failures with
// exponential backoff. An address Nominatim does not know yields unknown
// coordinates and a nil error.
func (c *NominatimClient) Geocode(ctx context.Context, address string) (model.Coordinates, error) {
	var lastErr error

	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: delay, 2*delay, 4*delay, ...
			backoff := c.retryDelay * (1 << (attempt - 1))
			select {
			case <-ctx.Done():
				return Unknown(), ctx.Err()
			case <-time.After(backoff):
			}
		}

		coords, err := c.lookup(ctx, address)
		if err == nil {
			return coords, nil
		}
		lastErr = err
	}

	return Unknown(), fmt.Errorf("geocode %q: %w", address, lastErr)
}

// lookup performs a single search request.
func (c *NominatimClient) lookup(ctx context.Context, address string) (model.Coordinates, error) {
	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return Unknown(), err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Unknown(), err
	}
	defer resp.Body.Close() //nolint:errcheck // Read-only body

	if resp.StatusCode != http.StatusOK {
		return Unknown(), fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Unknown(), err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Unknown(), fmt.Errorf("malformed nominatim response: %w", err)
	}

	// No results is a definitive "no location", not a failure.
	if len(results) == 0 {
		return Unknown(), nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Unknown(), fmt.Errorf("malformed latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Unknown(), fmt.Errorf("malformed longitude %q: %w", results[0].Lon, err)
	}

	return model.Coordinates{Lat: lat, Lon: lon, Known: true}, nil
}
