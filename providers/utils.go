package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/9seconds/tracemap/tracelib"
)

func flushResponse(resp io.ReadCloser) {
	io.Copy(io.Discard, resp) // nolint: errcheck
	resp.Close()
}

// getJSON sends GET request and decodes JSON response into target.
// Errors of HTTPClient (including *tracelib.RateLimitError) are
// wrapped, so callers can still inspect them.
func getJSON(ctx context.Context, client tracelib.HTTPClient, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("cannot build a request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot send a request: %w", err)
	}

	defer flushResponse(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(bufio.NewReader(resp.Body)).Decode(target); err != nil {
		return fmt.Errorf("cannot parse a response: %w", err)
	}

	return nil
}

func coordinates(lat, lon *float64) (tracelib.ProviderLookupResult, error) {
	if lat == nil || lon == nil {
		return tracelib.ProviderLookupResult{}, tracelib.ErrNoCoordinates
	}

	return tracelib.ProviderLookupResult{
		Latitude:  *lat,
		Longitude: *lon,
	}, nil
}
