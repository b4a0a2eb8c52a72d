package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"gorm.io/gorm"
)

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, assignmentRepo repository.AssignmentRepository) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name     string
	Status   string
	Progress *int
}

// ProjectTeam is a project with every assignment and its user.
type ProjectTeam struct {
	Project     models.Project
	Assignments []models.ProjectAssignment
}

func (s *ProjectService) ListProjects() ([]models.Project, error) {
	projects, err := s.projectRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// CreateProject creates a project. Status defaults to Active and progress is
// clamped to 0..100.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameEmpty
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = constants.DefaultProjectStatus
	}

	progress := constants.MinProjectProgress
	if input.Progress != nil {
		progress = models.ClampProgress(*input.Progress)
	}

	project := &models.Project{
		Name:     name,
		Status:   status,
		Progress: progress,
	}
	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// DeleteProject deletes a project along with its assignments and tasks
func (s *ProjectService) DeleteProject(id uint64) error {
	if _, err := s.findProject(id); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// Team returns the project together with every member and their project role.
func (s *ProjectService) Team(id uint64) (*ProjectTeam, error) {
	project, err := s.findProject(id)
	if err != nil {
		return nil, err
	}

	assignments, err := s.assignmentRepo.FindByProject(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load project members: %w", err)
	}

	return &ProjectTeam{Project: *project, Assignments: assignments}, nil
}

func (s *ProjectService) findProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
