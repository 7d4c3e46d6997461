package handlers_fiber

import (
	"net/http"

	"bug-lifecycle-tracker/internal/mapper"
	"bug-lifecycle-tracker/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetMe returns the authenticated user.
func (h *Handler) GetMe(c *fiber.Ctx) error {
	usr, err := h.uc.User(c.Context(), middleware.Principal(c).UserID)
	if err != nil {
		h.log.Errorw("failed to get current user", "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToUser(*usr), "")
}
