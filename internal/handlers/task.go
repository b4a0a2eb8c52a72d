package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taker-api/internal/dto"
	apierrors "github.com/yukikurage/taker-api/internal/errors"
	"github.com/yukikurage/taker-api/internal/middleware"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/services"
	"github.com/yukikurage/taker-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user.
// Can filter by user_id, status and project_id
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	// userId is the name older clients send
	userParam := "user_id"
	if c.Query(userParam) == "" && c.Query("userId") != "" {
		userParam = "userId"
	}
	assigneeID, ok := parseOptionalUintQuery(c, userParam)
	if !ok {
		return
	}
	projectID, ok := parseOptionalUintQuery(c, "project_id")
	if !ok {
		return
	}

	var status *models.TaskStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		normalized := models.NormalizeStatus(raw)
		status = &normalized
	}

	params := utils.GetPaginationParams(c)
	tasks, total, err := h.taskService.ListVisibleTasks(actor, services.ListTasksInput{
		AssigneeID: assigneeID,
		Status:     status,
		ProjectID:  projectID,
		Page:       params.Page,
		PageSize:   params.Limit,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// CreateTask creates a new task, assigned to the current user unless told otherwise
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title" binding:"required"`
		Status      string  `json:"status"`
		Description string  `json:"description"`
		DueDate     string  `json:"due_date"`
		AssigneeID  *uint64 `json:"assignee_id"`
		ProjectID   *uint64 `json:"project_id"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(actor, services.CreateTaskInput{
		Title:       req.Title,
		Status:      req.Status,
		Description: req.Description,
		DueDate:     req.DueDate,
		AssigneeID:  req.AssigneeID,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// AssignTask hands a new not-yet-started task to an existing user
func (h *TaskHandler) AssignTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	type AssignTaskRequest struct {
		UserID    uint64  `json:"user_id" binding:"required"`
		Title     string  `json:"title" binding:"required"`
		DueDate   string  `json:"due_date"`
		ProjectID *uint64 `json:"project_id"`
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.AssignTask(actor, services.AssignTaskInput{
		UserID:    req.UserID,
		Title:     req.Title,
		DueDate:   req.DueDate,
		ProjectID: req.ProjectID,
	})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTaskStatus changes the status of a task loaded by RequireTaskMutation
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateStatusRequest struct {
		Status string `json:"status"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTaskStatus(actor, task.ID, req.Status)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task loaded by RequireTaskMutation
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(actor, task.ID); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// SuggestTasks drafts tasks from free text using AI. Nothing is saved.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToSuggestedTaskDTOs(drafts),
	})
}
