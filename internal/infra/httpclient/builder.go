package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/huitzo/packkit/internal/domain"
)

// BuildGet builds a GET request with query parameters merged into the URL.
func BuildGet(ctx context.Context, rawURL string, params map[string]string, headers map[string]string) (*http.Request, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindUsage,
			Err:  domain.ErrUsage,
		}
	}

	if len(params) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "httpclient.build",
				Kind: domain.KindUsage,
				Path: rawURL,
				Err:  err,
			}
		}
		q := u.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindUsage,
			Path: rawURL,
			Err:  err,
		}
	}
	applyHeaders(req, headers)
	return req, nil
}

// BuildPost builds a POST request carrying body as a JSON payload.
func BuildPost(ctx context.Context, rawURL string, body any, headers map[string]string) (*http.Request, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindUsage,
			Err:  domain.ErrUsage,
		}
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, &domain.OpError{
				Op:   "httpclient.build",
				Kind: domain.KindUsage,
				Err:  err,
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindUsage,
			Path: rawURL,
			Err:  err,
		}
	}
	applyHeaders(req, headers)
	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func applyHeaders(req *http.Request, headers map[string]string) {
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}
