package handler

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docrepo/internal/http/middleware"
	"docrepo/internal/repository"
	"docrepo/internal/service"
)

// errorPayload is the body of every non-2xx response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// apiError is a status, code and client-safe message triple.
type apiError struct {
	status  int
	code    string
	message string
}

var (
	errBadRequest    = apiError{fiber.StatusBadRequest, "INVALID_BODY", "request body must be a JSON document"}
	errTooLarge      = apiError{fiber.StatusRequestEntityTooLarge, "INVALID_BODY", "request body too large"}
	errNoRoute       = apiError{fiber.StatusNotFound, "NOT_FOUND", "resource not found"}
	errNoDocument    = apiError{fiber.StatusNotFound, "NOT_FOUND", "document not found"}
	errMethod        = apiError{fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"}
	errUnavailable   = apiError{fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "document storage unavailable"}
	errClientGone    = apiError{fiber.StatusRequestTimeout, "REQUEST_TIMEOUT", "request canceled or timed out"}
	errInternal      = apiError{fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"}
	errInvalidID     = apiError{fiber.StatusBadRequest, "INVALID_ID", "id must be a positive integer"}
	errInvalidLimit  = apiError{fiber.StatusBadRequest, "INVALID_LIMIT", "limit must be an integer"}
	errInvalidOffset = apiError{fiber.StatusBadRequest, "INVALID_OFFSET", "offset must be an integer"}
)

// classify maps an error from any layer onto the API's error codes.
// Validation messages are passed through; everything else gets a fixed message.
func classify(err error) apiError {
	var fe *fiber.Error
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		msg := strings.TrimPrefix(err.Error(), service.ErrInvalidInput.Error()+": ")
		return apiError{fiber.StatusBadRequest, "VALIDATION_FAILED", msg}
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return errNoDocument
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errClientGone
	case errors.Is(err, repository.ErrStorage):
		return errUnavailable
	case errors.As(err, &fe):
		switch fe.Code {
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return errBadRequest
		case fiber.StatusRequestEntityTooLarge:
			return errTooLarge
		case fiber.StatusNotFound:
			return errNoRoute
		case fiber.StatusMethodNotAllowed:
			return errMethod
		}
	}
	return errInternal
}

func writeError(c *fiber.Ctx, e apiError) error {
	return c.Status(e.status).JSON(errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    e.code,
			Message: e.message,
		},
	})
}

// ErrorHandler renders errors that escape handlers (routing misses, panics turned into
// errors by recover, body limits) with the same envelope the handlers use.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, classify(err))
	}
}
