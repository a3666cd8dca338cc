package export_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/jonwraymond/promhealth/export"
	"github.com/jonwraymond/promhealth/health"
)

func ExampleHandler() {
	reg := health.NewRegistry()
	defer reg.Shutdown(context.Background())
	_ = reg.Add("database", health.StaticProbe(health.StatusHealthy))
	_ = reg.Add("filesystem", health.StaticProbe(health.StatusUnhealthy))

	h, err := export.Handler(reg)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if strings.HasPrefix(line, export.DefaultMetricName+"{") {
			fmt.Println(line)
		}
	}
	// Output:
	// health_check_status{system="database"} 1
	// health_check_status{system="filesystem"} 0
}

func ExampleDefaultMetricConfig() {
	cfg := export.DefaultMetricConfig()
	fmt.Println(cfg.Name)
	fmt.Println(cfg.Help)
	fmt.Println(cfg.Label)
	// Output:
	// health_check_status
	// Health check status results
	// system
}
