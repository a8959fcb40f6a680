package middleware

import (
	"io"
	"log/slog"

	"mockbank/internal/services"

	"github.com/prometheus/client_golang/prometheus"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() services.MetricsRecorderInterface {
	return services.NewPrometheusMetrics(prometheus.NewRegistry())
}
