package http

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk/internal/observability"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

const apiLocalsKey = "api_route"

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

// apiRoute marks a route whose failures are reported as JSON instead of a page.
func apiRoute(c *fiber.Ctx) error {
	c.Locals(apiLocalsKey, true)
	return c.Next()
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				domainErr := toDomainError(err)
				metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
				if domainErr.HTTPStatus >= 500 {
					logger.Error("request failed", zap.Error(domainErr), zap.String("path", c.Path()))
				}
				err = writeError(c, domainErr)
			}
		}()
		return c.Next()
	}
}

// toDomainError also maps the framework's own errors, such as unknown routes.
func toDomainError(err error) *apperrors.DomainError {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := apperrors.CodeInternal
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			code = apperrors.CodeNotFound
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			code = apperrors.CodeValidation
		case fiber.StatusForbidden:
			code = apperrors.CodeForbidden
		case fiber.StatusUnauthorized:
			code = apperrors.CodeUnauthorized
		}
		if code == apperrors.CodeInternal {
			return apperrors.ToDomainError(err)
		}
		return apperrors.NewDomainError(code, fiberErr.Message, fiberErr.Code, nil)
	}
	return apperrors.ToDomainError(err)
}

func writeError(c *fiber.Ctx, domainErr *apperrors.DomainError) error {
	message := apperrors.PublicMessage(domainErr)
	c.Status(domainErr.HTTPStatus)

	if isAPI, _ := c.Locals(apiLocalsKey).(bool); isAPI {
		return c.JSON(fiber.Map{"success": false, "error": message})
	}

	renderErr := c.Render("error", fiber.Map{
		"Title":   "Error",
		"Status":  domainErr.HTTPStatus,
		"Message": message,
	}, handlers.Layout)
	if renderErr != nil {
		return c.SendString(message)
	}
	return nil
}
