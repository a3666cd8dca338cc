package export

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/promhealth/health"
)

// Handler serves reg's samples in the Prometheus exposition format from a
// private registry holding only the health collector.
func Handler(reg *health.Registry, config ...MetricConfig) (http.Handler, error) {
	pr := prometheus.NewRegistry()
	if _, err := Register(pr, reg, config...); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(pr, promhttp.HandlerOpts{}), nil
}
