package transports

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rzbill/uniqueid/pkg/uniqueid"
)

// HTTPTransport implements IDTransport against the REST gateway.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

// NewHTTPTransport targets baseURL, e.g. http://127.0.0.1:8080. A nil
// client means http.DefaultClient.
func NewHTTPTransport(baseURL string, client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{baseURL: baseURL, client: client}
}

// Generate calls /v1/ids for a single ID and /v1/ids/batch otherwise.
func (t *HTTPTransport) Generate(ctx context.Context, req Request) ([]uniqueid.ID, error) {
	q := url.Values{}
	if req.Override {
		q.Set("generator", strconv.Itoa(req.GeneratorID))
		q.Set("cluster", strconv.Itoa(req.ClusterID))
	}
	n := req.count()
	path := "/v1/ids"
	if n > 1 {
		path = "/v1/ids/batch"
		q.Set("n", strconv.Itoa(n))
	}
	u := t.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		body, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return nil, fmt.Errorf("http error: %s: %s", resp.Status, e.Error)
		}
		return nil, fmt.Errorf("http error: %s", resp.Status)
	}

	var body struct {
		ID  string   `json:"id"`
		IDs []string `json:"ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	hexes := body.IDs
	if n == 1 {
		hexes = []string{body.ID}
	}
	out := make([]uniqueid.ID, 0, len(hexes))
	for _, h := range hexes {
		id, err := uniqueid.ParseHex(h)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}
