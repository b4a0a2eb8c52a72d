package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"github.com/yukikurage/taker-api/internal/utils"
	"gorm.io/gorm"
)

// UserService handles user administration and role-scoped directory listings.
type UserService struct {
	userRepo       repository.UserRepository
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
	taskRepo       repository.TaskRepository
	positionRepo   repository.PositionRepository
	access         *AccessService
	assignments    *AssignmentService
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	assignmentRepo repository.AssignmentRepository,
	taskRepo repository.TaskRepository,
	positionRepo repository.PositionRepository,
	access *AccessService,
	assignments *AssignmentService,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
		taskRepo:       taskRepo,
		positionRepo:   positionRepo,
		access:         access,
		assignments:    assignments,
	}
}

// UserSummary is a user together with the project context shown in listings.
type UserSummary struct {
	User           models.User
	CurrentProject string
	ManagerName    string
	TeamLeaderName string
	CompletedTasks int64
}

// Contact is a person the actor works with.
type Contact struct {
	ID    uint64
	Name  string
	Title string
	Email string
	Type  string
}

// ProjectMembers groups the team members of one project.
type ProjectMembers struct {
	ProjectName string
	Members     []models.User
}

// CreateUserInput represents input for creating a user on someone's behalf
type CreateUserInput struct {
	FullName  string
	Email     string
	Role      string
	Password  string
	Title     string
	Position  string
	Temporary *bool
}

// AssignRoleInput represents input for changing a user's global role
type AssignRoleInput struct {
	Role      string
	Position  string
	Temporary *bool
}

// UpdateProfileInput carries optional profile fields. A nil field is left
// unchanged and a blank string clears it.
type UpdateProfileInput struct {
	PhotoURL  *string
	Age       *int
	Skills    *string
	Temporary *bool
}

func lookupPosition(repo repository.PositionRepository, name string) *models.Position {
	name = strings.TrimSpace(name)
	if name == "" || repo == nil {
		return nil
	}
	position, err := repo.FindByName(name)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("Position lookup failed", "position", name, "error", err)
		}
		return nil
	}
	return position
}

func (s *UserService) findUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// CountUsers counts every user in the directory
func (s *UserService) CountUsers() (int64, error) {
	count, err := s.userRepo.Count()
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

// GetUser returns one user, provided the actor can see them.
func (s *UserService) GetUser(actor *models.User, id uint64) (*UserSummary, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	user, err := s.findUser(id)
	if err != nil {
		return nil, err
	}

	visible, err := s.access.IsUserVisible(actor, id)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrUserNotVisible
	}

	summaries, err := s.summarize([]models.User{*user})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// ListVisibleUsers pages through the actor's visible users ordered by id.
func (s *UserService) ListVisibleUsers(actor *models.User, params utils.PaginationParams) ([]UserSummary, int64, error) {
	filter := repository.UserFilter{Restrict: true, Pagination: params}

	if actor != nil && actor.Role == models.RoleAdmin {
		filter.Restrict = false
	} else {
		ids, err := s.access.VisibleUserIDs(actor)
		if err != nil {
			return nil, 0, err
		}
		filter.IDs = ids
	}

	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	summaries, err := s.summarize(users)
	if err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

// CreateUser creates an account for someone else. Managers cannot create Admins.
func (s *UserService) CreateUser(actor *models.User, input CreateUserInput) (*UserSummary, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	fullName := strings.TrimSpace(input.FullName)
	email := NormalizeEmail(input.Email)
	if fullName == "" {
		return nil, ErrFullNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	role := models.ParseRole(input.Role)
	if role == models.RoleAdmin && actor.Role != models.RoleAdmin {
		return nil, ErrAdminRoleRestricted
	}

	password := input.Password
	if strings.TrimSpace(password) == "" {
		password = constants.DefaultUserPassword
	}
	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	loginID, err := uniqueLoginID(s.userRepo)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		FullName:     fullName,
		Email:        email,
		LoginID:      &loginID,
		PasswordHash: hashedPassword,
		Role:         role,
		Title:        strings.TrimSpace(input.Title),
	}
	if input.Temporary != nil {
		user.Temporary = *input.Temporary
	}
	if position := lookupPosition(s.positionRepo, input.Position); position != nil {
		user.PositionID = &position.ID
		user.Position = position
	}

	if err := s.userRepo.Create(user); err != nil {
		if _, findErr := s.userRepo.FindByEmail(email); findErr == nil {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	summaries, err := s.summarize([]models.User{*user})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// AssignRole changes a user's global role. Only an Admin may grant or revoke Admin.
// Promoting to Manager or Admin without naming a position clears the position.
func (s *UserService) AssignRole(actor *models.User, userID uint64, input AssignRoleInput) (*UserSummary, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	role := models.ParseRole(input.Role)
	if actor.Role != models.RoleAdmin && (role == models.RoleAdmin || user.Role == models.RoleAdmin) {
		return nil, ErrAdminRoleRestricted
	}

	user.Role = role
	if position := lookupPosition(s.positionRepo, input.Position); position != nil {
		user.PositionID = &position.ID
		user.Position = position
	} else if strings.TrimSpace(input.Position) == "" && (role == models.RoleManager || role == models.RoleAdmin) {
		user.PositionID = nil
		user.Position = nil
	}
	if input.Temporary != nil {
		user.Temporary = *input.Temporary
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	summaries, err := s.summarize([]models.User{*user})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// AssignToProject validates the staffing rules and records the assignment.
func (s *UserService) AssignToProject(userID, projectID uint64, projectRole string) (*UserSummary, error) {
	if _, err := s.assignments.Assign(projectID, userID, models.ParseProjectRole(projectRole)); err != nil {
		return nil, err
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	summaries, err := s.summarize([]models.User{*user})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

// KickUser removes target from the system together with its assignments and tasks.
func (s *UserService) KickUser(actor *models.User, targetID uint64) error {
	if actor == nil {
		return ErrNotAuthenticated
	}

	target, err := s.findUser(targetID)
	if err != nil {
		return err
	}

	if err := s.access.CanKick(actor, target); err != nil {
		return err
	}

	if err := s.userRepo.DeleteCascade(target.ID); err != nil {
		return fmt.Errorf("failed to remove user: %w", err)
	}
	return nil
}

// UpdateProfile edits profile fields. Users edit their own profile;
// Admins and Managers may edit anyone's.
func (s *UserService) UpdateProfile(actor *models.User, userID uint64, input UpdateProfileInput) (*UserSummary, error) {
	if actor == nil {
		return nil, ErrNotAuthenticated
	}
	if actor.ID != userID && actor.Role != models.RoleAdmin && actor.Role != models.RoleManager {
		return nil, ErrProfileForbidden
	}

	user, err := s.findUser(userID)
	if err != nil {
		return nil, err
	}

	if input.PhotoURL != nil {
		user.PhotoURL = blankToNil(*input.PhotoURL)
	}
	if input.Age != nil {
		if *input.Age < 0 || *input.Age > constants.MaxUserAge {
			return nil, ErrInvalidAge
		}
		age := *input.Age
		user.Age = &age
	}
	if input.Skills != nil {
		user.Skills = blankToNil(*input.Skills)
	}
	if input.Temporary != nil {
		user.Temporary = *input.Temporary
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	summaries, err := s.summarize([]models.User{*user})
	if err != nil {
		return nil, err
	}
	return &summaries[0], nil
}

func blankToNil(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// LeaderProjects lists the names of projects the actor leads as Team Leader.
func (s *UserService) LeaderProjects(actor *models.User) ([]string, error) {
	if actor == nil || actor.Role != models.RoleTeamLeader {
		return []string{}, nil
	}

	led, err := s.assignmentRepo.FindByUserAndRole(actor.ID, models.ProjectRoleTeamLeader)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return projectNames(led), nil
}

// LeaderTeamMembers lists the TeamMember-role users of each project the actor leads.
func (s *UserService) LeaderTeamMembers(actor *models.User) ([]ProjectMembers, error) {
	if actor == nil || actor.Role != models.RoleTeamLeader {
		return []ProjectMembers{}, nil
	}

	led, err := s.assignmentRepo.FindByUserAndRole(actor.ID, models.ProjectRoleTeamLeader)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	result := make([]ProjectMembers, 0, len(led))
	seen := make(map[uint64]bool, len(led))
	for _, a := range led {
		if a.Project == nil || seen[a.ProjectID] {
			continue
		}
		seen[a.ProjectID] = true

		assignments, err := s.assignmentRepo.FindByProject(a.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load project members: %w", err)
		}

		members := []models.User{}
		for _, m := range assignments {
			if m.ProjectRole == models.ProjectRoleTeamMember && m.User != nil {
				members = append(members, *m.User)
			}
		}
		result = append(result, ProjectMembers{ProjectName: a.Project.Name, Members: members})
	}
	return result, nil
}

// LeaderManager returns the first project manager found across the projects
// the actor leads.
func (s *UserService) LeaderManager(actor *models.User) (Contact, error) {
	fallback := Contact{Name: "Team Manager", Title: ""}
	if actor == nil {
		return fallback, nil
	}

	led, err := s.assignmentRepo.FindByUserAndRole(actor.ID, models.ProjectRoleTeamLeader)
	if err != nil {
		return Contact{}, fmt.Errorf("failed to load assignments: %w", err)
	}

	for _, a := range led {
		members, err := s.assignmentRepo.FindByProject(a.ProjectID)
		if err != nil {
			return Contact{}, fmt.Errorf("failed to load project members: %w", err)
		}
		for _, m := range members {
			if m.ProjectRole != models.ProjectRoleManager || m.User == nil {
				continue
			}
			title := m.User.Title
			if title == "" {
				title = "Manager"
			}
			return Contact{ID: m.User.ID, Name: m.User.FullName, Title: title, Email: m.User.Email, Type: m.ProjectRole.Label()}, nil
		}
	}
	return fallback, nil
}

// MemberProjects lists the names of every project the actor is assigned to.
func (s *UserService) MemberProjects(actor *models.User) ([]string, error) {
	if actor == nil {
		return []string{}, nil
	}

	assignments, err := s.assignmentRepo.FindByUser(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}
	return projectNames(assignments), nil
}

// MemberContacts lists the people sharing a project with the actor, once each,
// typed by the project role under which they were first found.
func (s *UserService) MemberContacts(actor *models.User) ([]Contact, error) {
	if actor == nil {
		return []Contact{}, nil
	}

	mine, err := s.assignmentRepo.FindByUser(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	contacts := []Contact{}
	added := make(map[string]bool)
	for _, a := range mine {
		peers, err := s.assignmentRepo.FindByProject(a.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load project members: %w", err)
		}
		for _, p := range peers {
			if p.User == nil || p.UserID == actor.ID || added[p.User.Email] {
				continue
			}
			added[p.User.Email] = true
			contacts = append(contacts, Contact{
				ID:    p.User.ID,
				Name:  p.User.FullName,
				Title: p.User.Title,
				Email: p.User.Email,
				Type:  p.ProjectRole.Label(),
			})
		}
	}
	return contacts, nil
}

// AssignableUserIDs lists the team members of projectName the actor may hand tasks to.
func (s *UserService) AssignableUserIDs(actor *models.User, projectName string) ([]uint64, error) {
	return s.access.TeamLeaderAssignableUserIDs(actor, strings.TrimSpace(projectName))
}

func projectNames(assignments []models.ProjectAssignment) []string {
	names := []string{}
	seen := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		if a.Project == nil || seen[a.Project.Name] {
			continue
		}
		seen[a.Project.Name] = true
		names = append(names, a.Project.Name)
	}
	return names
}

// summarize attaches first-project context and completed task counts.
func (s *UserService) summarize(users []models.User) ([]UserSummary, error) {
	ids := make([]uint64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	completed, err := s.taskRepo.CountCompletedByAssignees(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	summaries := make([]UserSummary, len(users))
	for i, u := range users {
		summary := UserSummary{User: u, CompletedTasks: completed[u.ID]}

		assignments, err := s.assignmentRepo.FindByUser(u.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignments: %w", err)
		}
		if len(assignments) > 0 && assignments[0].Project != nil {
			first := assignments[0]
			summary.CurrentProject = first.Project.Name

			team, err := s.assignmentRepo.FindByProject(first.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("failed to load project members: %w", err)
			}
			for _, m := range team {
				if m.User == nil {
					continue
				}
				if m.ProjectRole == models.ProjectRoleManager && summary.ManagerName == "" {
					summary.ManagerName = m.User.FullName
				}
				if m.ProjectRole == models.ProjectRoleTeamLeader && summary.TeamLeaderName == "" {
					summary.TeamLeaderName = m.User.FullName
				}
			}
		}

		summaries[i] = summary
	}
	return summaries, nil
}

// EnsureAdmin creates an Admin with the given credentials unless a user with
// that email already exists. It reports whether a user was created.
func (s *UserService) EnsureAdmin(fullName, email, password string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return false, ErrEmailRequired
	}
	if len(password) < constants.MinPasswordLength {
		return false, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	loginID, err := uniqueLoginID(s.userRepo)
	if err != nil {
		return false, err
	}

	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		fullName = "Administrator"
	}

	admin := &models.User{
		FullName:     fullName,
		Email:        email,
		LoginID:      &loginID,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
	}
	if err := s.userRepo.Create(admin); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}
	return true, nil
}
