package tools

import (
	"context"
	"fmt"
	"net/http"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
	"github.com/gabriel-vasile/mimetype"
)

// HTTPProvider implements get and post passthrough calls.
//
// Bodies are returned as UTF-8. Optional params: "selector" adds the
// matching elements as "matches"; "sanitize" strips unsafe markup.
type HTTPProvider struct {
	fetcher Fetcher
}

// NewHTTPProvider creates an http provider
func NewHTTPProvider(fetcher Fetcher) *HTTPProvider {
	return &HTTPProvider{fetcher: fetcher}
}

// Category returns http
func (h *HTTPProvider) Category() types.Category {
	return types.CategoryHTTP
}

// Handlers returns the http actions
func (h *HTTPProvider) Handlers() map[string]Handler {
	return map[string]Handler{
		"get":  h.request(http.MethodGet),
		"post": h.request(http.MethodPost),
	}
}

func (h *HTTPProvider) request(method string) Handler {
	return func(ctx context.Context, params map[string]interface{}) (interface{}, error) {
		if h.fetcher == nil {
			return nil, fmt.Errorf("http client not configured")
		}
		url, err := RequireString(params, "url")
		if err != nil {
			return nil, err
		}

		resp, err := h.fetcher.Fetch(ctx, method, url, GetStringMap(params, "headers"), params["body"])
		if err != nil {
			return nil, err
		}

		headers := make(map[string]string, len(resp.Header()))
		for k, v := range resp.Header() {
			if len(v) > 0 {
				headers[k] = v[0]
			}
		}
		contentType := resp.Header().Get("Content-Type")
		if contentType == "" {
			contentType = mimetype.Detect(resp.Body()).String()
		}
		body, cs := decodeBody(resp.Body(), contentType)

		result := map[string]interface{}{
			"status":       resp.StatusCode(),
			"body":         body,
			"headers":      headers,
			"content_type": contentType,
			"charset":      cs,
		}

		if selector := GetString(params, "selector", ""); selector != "" {
			matches, err := selectAll(body, selector)
			if err != nil {
				return nil, err
			}
			result["matches"] = matches
		}
		if GetBool(params, "sanitize", false) {
			result["body"] = sanitize(body)
		}
		return result, nil
	}
}
