package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

func TestErrorMetricsKeyedByRoutePattern(t *testing.T) {
	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{Views: NewViews()})
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/ticket/:id", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "bad id")
	})

	for _, path := range []string{"/missing-a", "/missing-b", "/ticket/1", "/ticket/2"} {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		assert.NotEqual(t, fiber.StatusOK, resp.StatusCode, path)
	}

	errs := metrics.Snapshot().Errors
	assert.Len(t, errs, 2)
	assert.Equal(t, int64(2), errs["GET /ticket/:id|"+apperrors.CodeValidation])
	for key := range errs {
		assert.NotContains(t, key, "missing")
	}
}
