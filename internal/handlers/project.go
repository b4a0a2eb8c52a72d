package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taker-api/internal/dto"
	apierrors "github.com/yukikurage/taker-api/internal/errors"
	"github.com/yukikurage/taker-api/internal/middleware"
	"github.com/yukikurage/taker-api/internal/services"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects()
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// CreateProject creates a project; status defaults to Active
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name     string `json:"name" binding:"required,max=255"`
		Status   string `json:"status" binding:"max=100"`
		Progress *int   `json:"progress"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:     req.Name,
		Status:   req.Status,
		Progress: req.Progress,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project with its assignments and tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id", "project ID")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(projectID); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

func (h *ProjectHandler) GetTeam(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id", "project ID")
	if !ok {
		return
	}

	team, err := h.projectService.Team(projectID)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectTeamDTO(*team))
}
