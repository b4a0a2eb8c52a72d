package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"gorm.io/gorm"
)

// AssignmentService guards the staffing rules of a project before an
// assignment is written.
type AssignmentService struct {
	userRepo       repository.UserRepository
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
}

// NewAssignmentService creates a new AssignmentService
func NewAssignmentService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	assignmentRepo repository.AssignmentRepository,
) *AssignmentService {
	return &AssignmentService{
		userRepo:       userRepo,
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
	}
}

// CanAssign checks, in order: existence of both sides, duplicate pair,
// single manager, team leader capacity. It never writes.
func (s *AssignmentService) CanAssign(projectID, userID uint64, role models.ProjectRole) error {
	if _, err := s.projectRepo.FindByID(projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.assignmentRepo.FindByProjectAndUser(projectID, userID); err == nil {
		return ErrAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check assignment: %w", err)
	}

	switch role {
	case models.ProjectRoleManager:
		managers, err := s.assignmentRepo.CountByProjectAndRole(projectID, models.ProjectRoleManager)
		if err != nil {
			return fmt.Errorf("failed to count managers: %w", err)
		}
		if managers >= constants.MaxProjectManagers {
			return ErrProjectHasManager
		}
	case models.ProjectRoleTeamLeader:
		leaders, err := s.assignmentRepo.CountByProjectAndRole(projectID, models.ProjectRoleTeamLeader)
		if err != nil {
			return fmt.Errorf("failed to count team leaders: %w", err)
		}
		if leaders >= constants.MaxProjectTeamLeaders {
			return ErrTeamLeaderCapacity
		}
	}

	return nil
}

// CanAssignRole is CanAssign for a free-form project role string.
func (s *AssignmentService) CanAssignRole(projectID, userID uint64, role string) error {
	return s.CanAssign(projectID, userID, models.ParseProjectRole(role))
}

// Assign validates and then persists a new assignment.
func (s *AssignmentService) Assign(projectID, userID uint64, role models.ProjectRole) (*models.ProjectAssignment, error) {
	if err := s.CanAssign(projectID, userID, role); err != nil {
		return nil, err
	}

	assignment := &models.ProjectAssignment{
		ProjectID:   projectID,
		UserID:      userID,
		ProjectRole: role,
	}
	if err := s.assignmentRepo.Create(assignment); err != nil {
		// The unique (project, user) index catches a racing duplicate
		if _, findErr := s.assignmentRepo.FindByProjectAndUser(projectID, userID); findErr == nil {
			return nil, ErrAlreadyAssigned
		}
		return nil, fmt.Errorf("failed to create assignment: %w", err)
	}

	return assignment, nil
}
