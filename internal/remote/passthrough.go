package remote

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// Passthrough performs the http.* tools against arbitrary urls.
// There is no allow-list: any url the app spec names is reachable.
type Passthrough struct {
	client *Client
}

// NewPassthrough creates a passthrough client
func NewPassthrough(client *Client) *Passthrough {
	return &Passthrough{client: client}
}

// Fetch sends one request. Non-2xx replies are returned, not treated as errors.
func (p *Passthrough) Fetch(ctx context.Context, method, url string, headers map[string]string, body interface{}) (*resty.Response, error) {
	if url == "" {
		return nil, fmt.Errorf("url parameter required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("unsupported url scheme: %s", url)
	}

	return p.client.Do(ctx, func(r *resty.Request) (*resty.Response, error) {
		r.SetHeaders(headers)
		if body != nil && method != http.MethodGet {
			r.SetBody(body)
		}
		return r.Execute(method, url)
	})
}
