package handlers_fiber

import (
	"net/http"
	"strings"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/mapper"
	"bug-lifecycle-tracker/internal/transport/http/dto"
	"bug-lifecycle-tracker/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// PostBug files a bug report.
func (h *Handler) PostBug(c *fiber.Ctx) error {
	var body dto.CreateBugRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	b, err := h.uc.CreateBug(c.Context(), middleware.Principal(c), c.Params("projectId"), mapper.FromCreateBug(body))
	if err != nil {
		h.log.Errorw("failed to create bug", "project_id", c.Params("projectId"), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, mapper.ToBug(*b), "bug reported")
}

// GetBugs lists active bugs, optionally filtered by status and assignee.
func (h *Handler) GetBugs(c *fiber.Ctx) error {
	filter := entities.BugFilter{AssignedTo: c.Query("assigned_to")}
	if s := strings.TrimSpace(c.Query("status")); s != "" {
		status := entities.BugStatus(strings.ToUpper(s))
		filter.Status = &status
	}

	bugs, err := h.uc.ListBugs(c.Context(), middleware.Principal(c), c.Params("projectId"), filter)
	if err != nil {
		h.log.Errorw("failed to list bugs", "project_id", c.Params("projectId"), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToBugList(bugs), "")
}

// GetBug returns one bug with its history.
func (h *Handler) GetBug(c *fiber.Ctx) error {
	b, err := h.uc.GetBug(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"))
	if err != nil {
		h.log.Errorw("failed to get bug", "bug_id", c.Params("bugId"), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToBug(*b), "")
}

// PostBugApprove approves a report, optionally with an explicit severity.
func (h *Handler) PostBugApprove(c *fiber.Ctx) error {
	var body dto.ApproveBugRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&body); err != nil {
			return invalidBody(c)
		}
	}
	sev := entities.Severity(strings.ToUpper(strings.TrimSpace(body.Severity)))
	b, err := h.uc.ApproveBug(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), sev)
	return h.bugResult(c, b, err, "bug approved")
}

// PostBugReject rejects a report.
func (h *Handler) PostBugReject(c *fiber.Ctx) error {
	var body dto.ReasonRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	b, err := h.uc.RejectBug(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), body.Reason)
	return h.bugResult(c, b, err, "bug rejected")
}

// PostBugAssign assigns or reassigns the bug.
func (h *Handler) PostBugAssign(c *fiber.Ctx) error {
	var body dto.AssignBugRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	b, err := h.uc.AssignBug(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), body.AssigneeID)
	return h.bugResult(c, b, err, "bug assigned")
}

// PostBugReopenRequest asks to reopen a resolved bug.
func (h *Handler) PostBugReopenRequest(c *fiber.Ctx) error {
	var body dto.ReasonRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	b, err := h.uc.RequestReopen(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), body.Reason)
	return h.bugResult(c, b, err, "reopen requested")
}

// PostBugReopenApprove grants the pending reopen request.
func (h *Handler) PostBugReopenApprove(c *fiber.Ctx) error {
	b, err := h.uc.ApproveReopen(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"))
	return h.bugResult(c, b, err, "bug reopened")
}

// PostBugReopenReject turns down the pending reopen request.
func (h *Handler) PostBugReopenReject(c *fiber.Ctx) error {
	var body dto.ReasonRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	b, err := h.uc.RejectReopen(c.Context(), middleware.Principal(c), c.Params("projectId"), c.Params("bugId"), body.Reason)
	return h.bugResult(c, b, err, "reopen rejected")
}

func (h *Handler) bugResult(c *fiber.Ctx, b *entities.Bug, err error, msg string) error {
	if err != nil {
		h.log.Errorw("bug command failed", "path", c.Path(), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToBug(*b), msg)
}
