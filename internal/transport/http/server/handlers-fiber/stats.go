package handlers_fiber

import (
	"net/http"

	"bug-lifecycle-tracker/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetProjectStats returns bug and fix counters of the project.
func (h *Handler) GetProjectStats(c *fiber.Ctx) error {
	projectID := c.Params("projectId")
	res, err := h.uc.ProjectStats(c.Context(), middleware.Principal(c), projectID)
	if err != nil {
		h.log.Errorw("failed to get project stats", "project_id", projectID, "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, res, "")
}
