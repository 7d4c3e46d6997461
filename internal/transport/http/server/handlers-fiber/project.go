package handlers_fiber

import (
	"net/http"

	"bug-lifecycle-tracker/internal/entities"
	"bug-lifecycle-tracker/internal/mapper"
	"bug-lifecycle-tracker/internal/transport/http/dto"
	"bug-lifecycle-tracker/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// PostProject creates a project led by the caller.
func (h *Handler) PostProject(c *fiber.Ctx) error {
	var body dto.CreateProjectRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	p, err := h.uc.CreateProject(c.Context(), middleware.Principal(c), body.Name, body.Description)
	if err != nil {
		h.log.Errorw("failed to create project", "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, mapper.ToProject(*p), "project created")
}

// GetProjects lists projects the caller belongs to.
func (h *Handler) GetProjects(c *fiber.Ctx) error {
	projects, err := h.uc.ListMyProjects(c.Context(), middleware.Principal(c))
	if err != nil {
		h.log.Errorw("failed to list projects", "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToProjectList(projects), "")
}

// GetProject returns one project to its members.
func (h *Handler) GetProject(c *fiber.Ctx) error {
	p, err := h.uc.GetProject(c.Context(), middleware.Principal(c), c.Params("projectId"))
	if err != nil {
		h.log.Errorw("failed to get project", "project_id", c.Params("projectId"), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToProject(*p), "")
}

// PostProjectJoin adds the caller to the project holding the invite code.
func (h *Handler) PostProjectJoin(c *fiber.Ctx) error {
	var body dto.JoinProjectRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	p, err := h.uc.JoinProject(c.Context(), middleware.Principal(c), body.InviteCode, entities.MemberRole(body.Role))
	if err != nil {
		h.log.Errorw("failed to join project", "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToProject(*p), "joined project")
}

// PostProjectMember lets the lead add a user to the project.
func (h *Handler) PostProjectMember(c *fiber.Ctx) error {
	var body dto.AddMemberRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}
	p, err := h.uc.AddMember(c.Context(), middleware.Principal(c), c.Params("projectId"), body.UserID, entities.MemberRole(body.Role))
	if err != nil {
		h.log.Errorw("failed to add member", "project_id", c.Params("projectId"), "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusCreated, mapper.ToProject(*p), "member added")
}

// DeleteProjectMember removes a member and corrects their in-flight work.
func (h *Handler) DeleteProjectMember(c *fiber.Ctx) error {
	projectID, userID := c.Params("projectId"), c.Params("userId")
	res, err := h.uc.RemoveMember(c.Context(), middleware.Principal(c), projectID, userID)
	if err != nil {
		h.log.Errorw("failed to remove member", "project_id", projectID, "user_id", userID, "error", err.Error())
		return writeError(c, err)
	}
	return respond(c, http.StatusOK, mapper.ToMemberRemoval(res), "member removed")
}
