package probes

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/go-resty/resty/v2"

	"github.com/jonwraymond/promhealth/health"
)

// HTTPConfig configures an HTTP probe.
type HTTPConfig struct {
	// URL is the absolute http or https URL to request.
	URL string

	// Method is the request method.
	// Default: GET
	Method string

	// Header is added to every request.
	Header map[string]string

	// ExpectStatus lists the accepted status codes. When empty any status
	// below 400 is accepted.
	ExpectStatus []int
}

// HTTPProbe requests a URL and checks the response status.
type HTTPProbe struct {
	config HTTPConfig
	client *resty.Client
}

// NewHTTP creates an HTTP probe.
func NewHTTP(config HTTPConfig) (*HTTPProbe, error) {
	u, err := url.Parse(config.URL)
	if err != nil {
		return nil, fmt.Errorf("probes: invalid url %q: %w", config.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("probes: invalid url %q: want absolute http(s) url", config.URL)
	}
	if config.Method == "" {
		config.Method = http.MethodGet
	}

	client := resty.New().
		SetHeaders(config.Header).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &HTTPProbe{config: config, client: client}, nil
}

// Check performs the request.
func (p *HTTPProbe) Check(ctx context.Context) (health.Status, error) {
	resp, err := p.client.R().SetContext(ctx).Execute(p.config.Method, p.config.URL)
	if err != nil {
		return health.StatusUnhealthy, fmt.Errorf("%s unreachable: %w", p.config.URL, err)
	}

	code := resp.StatusCode()
	if !p.accepts(code) {
		return health.StatusUnhealthy, fmt.Errorf("%w: %s returned %d", ErrUnexpectedStatus, p.config.URL, code)
	}
	return health.StatusHealthy, nil
}

func (p *HTTPProbe) accepts(code int) bool {
	if len(p.config.ExpectStatus) == 0 {
		return code < http.StatusBadRequest
	}
	return slices.Contains(p.config.ExpectStatus, code)
}
