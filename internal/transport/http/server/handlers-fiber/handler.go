// Package handlers_fiber wires HTTP delivery components.
package handlers_fiber

import (
	"bug-lifecycle-tracker/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the HTTP API using service layer interfaces.
type Handler struct {
	log *zap.SugaredLogger
	uc  usecase.InterfaceUsecase
}

// NewHandler constructs an HTTP server with service dependencies.
func NewHandler(log *zap.SugaredLogger, usecase usecase.InterfaceUsecase) *Handler {
	return &Handler{
		log: log,
		uc:  usecase,
	}
}

// Register mounts every API route on r. Authentication is applied by the caller.
func (h *Handler) Register(r fiber.Router) {
	r.Get("/users/me", h.GetMe)
	r.Post("/severity/suggest", h.PostSeveritySuggest)

	r.Post("/projects", h.PostProject)
	r.Get("/projects", h.GetProjects)
	r.Post("/projects/join", h.PostProjectJoin)
	r.Get("/projects/:projectId", h.GetProject)
	r.Post("/projects/:projectId/members", h.PostProjectMember)
	r.Delete("/projects/:projectId/members/:userId", h.DeleteProjectMember)
	r.Get("/projects/:projectId/stats", h.GetProjectStats)

	bugs := r.Group("/projects/:projectId/bugs")
	bugs.Post("/", h.PostBug)
	bugs.Get("/", h.GetBugs)
	bugs.Get("/:bugId", h.GetBug)
	bugs.Post("/:bugId/approve", h.PostBugApprove)
	bugs.Post("/:bugId/reject", h.PostBugReject)
	bugs.Post("/:bugId/assign", h.PostBugAssign)
	bugs.Post("/:bugId/reopen-request", h.PostBugReopenRequest)
	bugs.Post("/:bugId/reopen-approve", h.PostBugReopenApprove)
	bugs.Post("/:bugId/reopen-reject", h.PostBugReopenReject)

	bugs.Post("/:bugId/fixes", h.PostFix)
	bugs.Get("/:bugId/fixes", h.GetFixes)
	bugs.Post("/:bugId/fixes/:fixId/accept", h.PostFixAccept)
	bugs.Post("/:bugId/fixes/:fixId/reject", h.PostFixReject)
}
