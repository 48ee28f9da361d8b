package datasource

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vanderheijden86/spectra/pkg/model"
)

// ReadHTTP fetches nodes from the mock backend. The analyze endpoint is
// POSTed to, everything else is fetched with GET.
func ReadHTTP(ctx context.Context, client *http.Client, rawURL string, warn func(string)) ([]model.Node, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	method := http.MethodGet
	var body io.Reader
	if strings.HasSuffix(strings.TrimRight(u.Path, "/"), "/analyze") {
		method = http.MethodPost
		body = strings.NewReader("{}")
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s: %s", method, rawURL, resp.Status)
	}
	return decodeBytes(data, warn)
}

func decodeBytes(data []byte, warn func(string)) ([]model.Node, error) {
	return DecodeJSON(bytes.NewReader(data), warn)
}
