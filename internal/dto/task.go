package dto

import (
	"time"

	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/services"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
	AssigneeID  *uint64           `json:"assignee_id"`
	ProjectID   *uint64           `json:"project_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Assignee    *UserRefDTO       `json:"assignee,omitempty"`
	Project     *ProjectRefDTO    `json:"project,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// SuggestedTaskDTO is an AI draft that has not been saved
type SuggestedTaskDTO struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		AssigneeID:  task.AssigneeID,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include relations if preloaded
	if task.Assignee != nil {
		assignee := ToUserRefDTO(*task.Assignee)
		dto.Assignee = &assignee
	}
	if task.Project != nil {
		dto.Project = &ProjectRefDTO{ID: task.Project.ID, Name: task.Project.Name}
	}

	return dto
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

func ToSuggestedTaskDTOs(drafts []services.GeneratedTask) []SuggestedTaskDTO {
	out := make([]SuggestedTaskDTO, len(drafts))
	for i, d := range drafts {
		out[i] = SuggestedTaskDTO{
			Title:       d.Title,
			Description: d.Description,
			Status:      d.Status,
			DueDate:     d.DueDate,
		}
	}
	return out
}
