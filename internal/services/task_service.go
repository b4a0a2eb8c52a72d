package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"gorm.io/gorm"
)

const dueDateLayout = "2006-01-02"

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
	projectRepo repository.ProjectRepository
	access      *AccessService
	aiService   *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	access *AccessService,
	aiService *AIService,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		userRepo:    userRepo,
		projectRepo: projectRepo,
		access:      access,
		aiService:   aiService,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	AssigneeID *uint64
	Status     *models.TaskStatus
	ProjectID  *uint64
	Page       int
	PageSize   int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Status      string
	Description string
	DueDate     string
	AssigneeID  *uint64
	ProjectID   *uint64
}

// AssignTaskInput represents input for handing a new task to a user
type AssignTaskInput struct {
	UserID    uint64
	Title     string
	DueDate   string
	ProjectID *uint64
}

// ListVisibleTasks returns the tasks whose assignee the actor may see.
// AssigneeID only narrows within that set.
func (s *TaskService) ListVisibleTasks(actor *models.User, input ListTasksInput) ([]models.Task, int64, error) {
	scope, err := s.access.TaskScope(actor)
	if err != nil {
		return nil, 0, err
	}

	filter := repository.TaskFilter{
		Status:    input.Status,
		ProjectID: input.ProjectID,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}

	switch {
	case input.AssigneeID != nil && scope.All:
		filter.Restrict = true
		filter.AssigneeIDs = []uint64{*input.AssigneeID}
	case input.AssigneeID != nil:
		filter.Restrict = true
		filter.AssigneeIDs = []uint64{}
		for _, id := range scope.AssigneeIDs {
			if id == *input.AssigneeID {
				filter.AssigneeIDs = []uint64{id}
				break
			}
		}
	case !scope.All:
		filter.Restrict = true
		filter.AssigneeIDs = scope.AssigneeIDs
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// CreateTask creates a task. The assignee defaults to the actor, and falls
// back to the actor when the requested one does not exist.
func (s *TaskService) CreateTask(actor *models.User, input CreateTaskInput) (*models.Task, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	assigneeID := actor.ID
	if input.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(*input.AssigneeID); err == nil {
			assigneeID = *input.AssigneeID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find assignee: %w", err)
		}
	}

	projectID, err := s.existingProjectID(input.ProjectID)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      models.NormalizeStatus(input.Status),
		DueDate:     parseDueDate(input.DueDate),
		AssigneeID:  &assigneeID,
		ProjectID:   projectID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project")
}

// AssignTask creates a not-yet-started task for an existing user.
func (s *TaskService) AssignTask(actor *models.User, input AssignTaskInput) (*models.Task, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if _, err := s.userRepo.FindByID(input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	projectID, err := s.existingProjectID(input.ProjectID)
	if err != nil {
		return nil, err
	}

	userID := input.UserID
	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusNeedToStart,
		DueDate:    parseDueDate(input.DueDate),
		AssigneeID: &userID,
		ProjectID:  projectID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project")
}

// UpdateTaskStatus normalizes and stores a new status if the actor may mutate the task.
func (s *TaskService) UpdateTaskStatus(actor *models.User, taskID uint64, status string) (*models.Task, error) {
	task, err := s.authorizedTask(actor, taskID)
	if err != nil {
		return nil, err
	}

	task.Status = models.NormalizeStatus(status)
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project")
}

// DeleteTask deletes a task if the actor may mutate it
func (s *TaskService) DeleteTask(actor *models.User, taskID uint64) error {
	if _, err := s.authorizedTask(actor, taskID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func (s *TaskService) authorizedTask(actor *models.User, taskID uint64) (*models.Task, error) {
	return s.access.AuthorizeTaskMutation(actor, taskID)
}

// existingProjectID drops a project reference that does not resolve.
func (s *TaskService) existingProjectID(id *uint64) (*uint64, error) {
	if id == nil {
		return nil, nil
	}
	if _, err := s.projectRepo.FindByID(*id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	projectID := *id
	return &projectID, nil
}

// parseDueDate reads a YYYY-MM-DD date; anything else means no due date.
func parseDueDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	due, err := time.Parse(dueDateLayout, value)
	if err != nil {
		return nil
	}
	return &due
}

// SuggestTasks drafts tasks from free text with the AI service. Nothing is saved.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.aiService.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	drafts := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		if strings.TrimSpace(aiTask.Title) == "" {
			continue
		}

		aiTask.Status = models.NormalizeStatus(string(aiTask.Status))
		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		drafts = append(drafts, aiTask)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return drafts, nil
}
