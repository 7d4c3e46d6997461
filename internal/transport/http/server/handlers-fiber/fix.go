package handlers_fiber

import (
	"net/http"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/mapper"
	"bug-lifecycle-tracker/internal/transport/http/dto"
	"bug-lifecycle-tracker/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// PostFix submits a fix for the bug under the caller's assignment.
func (h *Handler) PostFix(c *fiber.Ctx) error {
	var body dto.SubmitFixRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	b, f, err := h.uc.SubmitFix(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), mapper.FromSubmitFix(body))
	if err != nil {
		h.log.Errorw("failed to submit fix", "bug_id", c.Params("bugId"), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, mapper.ToFixReview(*b, *f), "fix submitted")
}

// GetFixes lists fixes submitted for the bug.
func (h *Handler) GetFixes(c *fiber.Ctx) error {
	fixes, err := h.uc.ListFixes(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"))
	if err != nil {
		h.log.Errorw("failed to list fixes", "bug_id", c.Params("bugId"), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToFixList(fixes), "")
}

// PostFixAccept accepts the fix under review.
func (h *Handler) PostFixAccept(c *fiber.Ctx) error {
	b, f, err := h.uc.AcceptFix(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), c.Params("fixId"))
	return h.fixResult(c, b, f, err, "fix accepted")
}

// PostFixReject rejects the fix under review.
func (h *Handler) PostFixReject(c *fiber.Ctx) error {
	var body dto.ReasonRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	b, f, err := h.uc.RejectFix(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), c.Params("fixId"), body.Reason)
	return h.fixResult(c, b, f, err, "fix rejected")
}

func (h *Handler) fixResult(c *fiber.Ctx, b *entities.Bug, f *entities.BugFix, err error, msg string) error {
	if err != nil {
		h.log.Errorw("fix command failed", "path", c.Path(), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToFixReview(*b, *f), msg)
}
