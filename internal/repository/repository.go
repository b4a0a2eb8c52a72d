package repository

import (
	"time"

	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID with its position loaded
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by (already normalized) email
	FindByEmail(email string) (*models.User, error)

	// FindByLoginID finds a user by the 5-digit login id
	FindByLoginID(loginID int) (*models.User, error)

	// ListIDs returns the id of every user
	ListIDs() ([]uint64, error)

	// FindByIDs loads every user in ids, ordered by id
	FindByIDs(ids []uint64) ([]models.User, error)

	// List retrieves users with filtering and pagination, ordered by id
	List(filter UserFilter) ([]models.User, int64, error)

	// ExistsLoginID reports whether a login id is already taken
	ExistsLoginID(loginID int) (bool, error)

	// Update saves every column of the user
	Update(user *models.User) error

	// Count counts all users
	Count() (int64, error)

	// SaveChallenge stores a pending reset answer, replacing any earlier one
	SaveChallenge(userID uint64, answer string, expiresAt time.Time) error

	// ClearChallenge removes any pending reset answer
	ClearChallenge(userID uint64) error

	// ConsumeChallenge swaps the password hash and clears the challenge only if
	// the stored answer is still the one given. It reports whether a row changed.
	ConsumeChallenge(userID uint64, answer, passwordHash string) (bool, error)

	// DeleteCascade removes a user's assignments, assigned tasks and the user itself
	DeleteCascade(userID uint64) error
}

// UserFilter holds filtering options for listing users.
// With Restrict set, only IDs are considered (an empty IDs yields nothing).
type UserFilter struct {
	IDs        []uint64
	Restrict   bool
	Pagination utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	Create(project *models.Project) error
	FindByID(id uint64) (*models.Project, error)
	FindByName(name string) (*models.Project, error)
	List() ([]models.Project, error)

	// Delete deletes a project together with its assignments and tasks
	Delete(id uint64) error
}

// AssignmentRepository defines the interface for project assignment data access
type AssignmentRepository interface {
	// Create persists a new assignment
	Create(assignment *models.ProjectAssignment) error

	// Delete removes an assignment; a missing id is not an error
	Delete(id uint64) error

	// FindByUser lists every assignment of a user with its project loaded
	FindByUser(userID uint64) ([]models.ProjectAssignment, error)

	// FindByProject lists every assignment in a project with its user loaded
	FindByProject(projectID uint64) ([]models.ProjectAssignment, error)

	// FindByUserAndRole lists the assignments where a user holds role
	FindByUserAndRole(userID uint64, role models.ProjectRole) ([]models.ProjectAssignment, error)

	// FindByProjectAndUser finds the single assignment for a (project, user) pair
	FindByProjectAndUser(projectID, userID uint64) (*models.ProjectAssignment, error)

	// CountByProjectAndRole counts the assignments holding role in a project
	CountByProjectAndRole(projectID uint64, role models.ProjectRole) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// FindByAssignee lists the tasks assigned to a user
	FindByAssignee(userID uint64) ([]models.Task, error)

	// FindByAssigneeIn lists the tasks assigned to any of userIDs
	FindByAssigneeIn(userIDs []uint64) ([]models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task; a missing id is not an error
	Delete(id uint64) error

	// CountCompletedByAssignees counts completed tasks per assignee
	CountCompletedByAssignees(userIDs []uint64) (map[uint64]int64, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// AssigneeIDs restricts the result when Restrict is set
	AssigneeIDs []uint64
	Restrict    bool
	Status      *models.TaskStatus
	ProjectID   *uint64
	Page        int
	PageSize    int
}

// PositionRepository defines the interface for position data access
type PositionRepository interface {
	FindByName(name string) (*models.Position, error)
	List() ([]models.Position, error)

	// Ensure creates the named position if it does not exist yet
	Ensure(name string) (*models.Position, error)
}
