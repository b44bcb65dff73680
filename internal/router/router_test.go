package router_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leetnote-go-api/internal/config"
	"github.com/noah-isme/leetnote-go-api/internal/handler"
	"github.com/noah-isme/leetnote-go-api/internal/middleware"
	"github.com/noah-isme/leetnote-go-api/internal/router"
)

func newApp() *fiber.App {
	app := fiber.New()
	logger := zerolog.New(io.Discard)
	middleware.Register(app, middleware.Config{Logger: &logger})

	resolve := func(context.Context, string, string) (uint, error) { return 1, nil }
	router.Register(app, config.Config{AppName: "LeetNote", AppEnv: "test"}, router.Dependencies{
		EvaluationHandler: handler.NewEvaluationHandler(nil, logger),
		JWTMiddleware:     middleware.JWTProtected("secret", resolve),
	})
	return app
}

func TestHealthIsPublic(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "LeetNote", resp.Header.Get("X-Application"))
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))
}

func TestMetricsEndpointExposesRequestCounters(t *testing.T) {
	app := newApp()

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `http_requests_total{method="GET",route="/api/v1/health",status="200"}`)
}

func TestEvaluationRoutesRequireToken(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest(http.MethodGet, "/evaluations/all", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
