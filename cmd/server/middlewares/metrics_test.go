package middlewares

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoutePath(t *testing.T) {
	t.Run("matched route returns template", func(t *testing.T) {
		app := fiber.New()
		app.Get("/notes/:id", func(c *fiber.Ctx) error {
			assert.Equal(t, "/notes/:id", normalizeRoutePath(c), "should return route template")
			return c.SendString("ok")
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/notes/abc123", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("unmatched route returns actual path without panic", func(t *testing.T) {
		app := fiber.New()
		app.Use(func(c *fiber.Ctx) error {
			assert.NotEmpty(t, normalizeRoutePath(c))
			return c.SendStatus(404)
		})

		resp, err := app.Test(httptest.NewRequest("GET", "/nonexistent", nil))
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, "2xx", normalizeStatus(201))
	assert.Equal(t, "4xx", normalizeStatus(404))
	assert.Equal(t, "5xx", normalizeStatus(503))
	assert.Equal(t, "101", normalizeStatus(101))
}

func TestAttachMetricsSharesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	external := prometheus.NewCounter(prometheus.CounterOpts{Name: "collab_test_total", Help: "test"})
	reg.MustRegister(external)
	external.Inc()

	app := fiber.New()
	AttachMetrics(app, reg)
	app.Get("/notes/:id", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for range 3 {
		resp, err := app.Test(httptest.NewRequest("GET", "/notes/n1", nil))
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
	}

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["path"] == "/notes/:id" && labels["status"] == "2xx" {
				total += m.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, float64(3), total)

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "collab_test_total 1")
	assert.Contains(t, string(body), "http_request_duration_seconds")
}
