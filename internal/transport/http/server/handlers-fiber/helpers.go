package handlers_fiber

import (
	"errors"
	"net/http"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

func writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := dto.CodeInternal
	msg := "internal error"

	switch {
	case errors.Is(err, entities.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = dto.CodeInvalidArgument
		msg = err.Error()
	case errors.Is(err, entities.ErrInvalidState):
		status = http.StatusBadRequest
		code = dto.CodeInvalidState
		msg = err.Error()
	case errors.Is(err, entities.ErrUnauthenticated):
		status = http.StatusUnauthorized
		code = dto.CodeUnauthenticated
		msg = "authentication required"
	case errors.Is(err, entities.ErrForbidden):
		status = http.StatusForbidden
		code = dto.CodeForbidden
		msg = err.Error()
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
		code = dto.CodeNotFound
		msg = err.Error()
	case errors.Is(err, entities.ErrConflict):
		status = http.StatusConflict
		code = dto.CodeConflict
		msg = err.Error()
	}

	return c.Status(status).JSON(errorResponse(status, code, msg))
}

func errorResponse(status int, code, msg string) dto.ErrorResponse {
	return dto.ErrorResponse{
		Success:    false,
		StatusCode: status,
		Message:    msg,
		Errors:     []string{code},
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(errorResponse(http.StatusBadRequest, dto.CodeInvalidArgument, "invalid body"))
}

func respond(c *fiber.Ctx, status int, data any, msg string) error {
	return c.Status(status).JSON(dto.Response{Success: true, Data: data, Message: msg})
}
