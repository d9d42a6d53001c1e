package httpsvc

import (
	"context"
	"net/http"
	"time"

	"github.com/huitzo/packkit/internal/infra/httpclient"
	"github.com/huitzo/packkit/pkg/huitzo"
)

// Service exposes outbound HTTP to pack handlers with timing and per-call
// timeouts.
type Service struct {
	exec *httpclient.Executor
}

func New(opts ...httpclient.ExecutorOption) *Service {
	return &Service{exec: httpclient.NewExecutor(opts...)}
}

var _ huitzo.HTTPService = (*Service)(nil)

func (s *Service) Get(ctx context.Context, url string, opts ...huitzo.RequestOption) (huitzo.HTTPResult, error) {
	o := collect(opts)

	ctx, cancel := withTimeout(ctx, o.Timeout)
	defer cancel()

	req, err := httpclient.BuildGet(ctx, url, o.Params, nil)
	if err != nil {
		return huitzo.HTTPResult{}, err
	}
	return s.do(ctx, req)
}

func (s *Service) Post(ctx context.Context, url string, body any, opts ...huitzo.RequestOption) (huitzo.HTTPResult, error) {
	o := collect(opts)

	ctx, cancel := withTimeout(ctx, o.Timeout)
	defer cancel()

	req, err := httpclient.BuildPost(ctx, url, body, nil)
	if err != nil {
		return huitzo.HTTPResult{}, err
	}
	return s.do(ctx, req)
}

func (s *Service) do(ctx context.Context, req *http.Request) (huitzo.HTTPResult, error) {
	resp, err := s.exec.Do(ctx, req)
	if err != nil {
		return huitzo.HTTPResult{Duration: resp.Duration}, err
	}
	return huitzo.HTTPResult{
		StatusCode: resp.Status,
		Body:       resp.BodyBytes,
		Duration:   resp.Duration,
	}, nil
}

func collect(opts []huitzo.RequestOption) huitzo.RequestOptions {
	var o huitzo.RequestOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}
