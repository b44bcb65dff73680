package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	return metric.GetCounter().GetValue()
}

func TestEvaluationCounterIncrements(t *testing.T) {
	before := counterValue(t, Evaluations().WithLabelValues("fallback"))
	Evaluations().WithLabelValues("fallback").Inc()
	require.Equal(t, before+1, counterValue(t, Evaluations().WithLabelValues("fallback")))
}

func TestMetricsHandlerExposesCollectors(t *testing.T) {
	RetentionDeleted().Add(2)

	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "evaluation_retention_deleted_total 2")
}
