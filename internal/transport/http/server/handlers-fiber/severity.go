package handlers_fiber

import (
	"net/http"

	"bug-lifecycle-tracker/internal/mapper"
	"bug-lifecycle-tracker/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// PostSeveritySuggest previews the severity the engine would suggest.
func (h *Handler) PostSeveritySuggest(c *fiber.Ctx) error {
	var body dto.SuggestSeverityRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	in := mapper.FromSuggestSeverity(body)
	if in.Environment != "" && !in.Environment.IsValid() {
		return c.Status(http.StatusBadRequest).JSON(errorResponse(http.StatusBadRequest, dto.CodeInvalidArgument, "invalid environment"))
	}
	return respond(c, http.StatusOK, mapper.ToSeveritySuggestion(h.uc.SuggestSeverity(in)), "")
}
