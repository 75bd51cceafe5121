package observability

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExposesGradingCollectors(t *testing.T) {
	app := fiber.New()
	app.Get("/metrics", MetricsHandler())

	GradingOutcomes().WithLabelValues("degraded", "gemini-2.0-flash").Inc()
	PolicyFallbacks().Inc()

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `grading_outcomes_total{model="gemini-2.0-flash",outcome="degraded"}`)
	require.Contains(t, string(body), "grading_policy_fallbacks_total")
}
