package services

import (
	"errors"
	"fmt"
	"slices"

	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"gorm.io/gorm"
)

// AccessService decides what an actor may see and change. Every answer is
// computed from the current assignment graph; nothing is cached between calls.
type AccessService struct {
	userRepo       repository.UserRepository
	projectRepo    repository.ProjectRepository
	assignmentRepo repository.AssignmentRepository
	taskRepo       repository.TaskRepository
}

// NewAccessService creates a new AccessService
func NewAccessService(
	userRepo repository.UserRepository,
	projectRepo repository.ProjectRepository,
	assignmentRepo repository.AssignmentRepository,
	taskRepo repository.TaskRepository,
) *AccessService {
	return &AccessService{
		userRepo:       userRepo,
		projectRepo:    projectRepo,
		assignmentRepo: assignmentRepo,
		taskRepo:       taskRepo,
	}
}

// TaskScope is the assignee restriction for task listings. All means no
// restriction at all, including unassigned tasks.
type TaskScope struct {
	All         bool
	AssigneeIDs []uint64
}

// ResolveActor loads the acting user. A missing user yields (nil, nil) so
// callers can apply their unresolved-actor policy.
func (s *AccessService) ResolveActor(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve actor: %w", err)
	}
	return user, nil
}

// VisibleUserIDs returns the users the actor may list, sorted by id.
// An unresolved actor sees nobody.
func (s *AccessService) VisibleUserIDs(actor *models.User) ([]uint64, error) {
	if actor == nil {
		return []uint64{}, nil
	}

	switch actor.Role {
	case models.RoleAdmin:
		ids, err := s.userRepo.ListIDs()
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}
		return ids, nil
	case models.RoleManager, models.RoleTeamLeader:
		return s.hierarchyScope(actor)
	default:
		visible := newIDSet(actor.ID)
		assignments, err := s.assignmentRepo.FindByUser(actor.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load assignments: %w", err)
		}
		for _, a := range assignments {
			peers, err := s.assignmentRepo.FindByProject(a.ProjectID)
			if err != nil {
				return nil, fmt.Errorf("failed to load project members: %w", err)
			}
			for _, p := range peers {
				visible.add(p.UserID)
			}
		}
		return visible.sorted(), nil
	}
}

// TaskScope returns whose tasks the actor may list. Members only ever see
// their own; Managers and Team Leaders see the same people they can list.
func (s *AccessService) TaskScope(actor *models.User) (TaskScope, error) {
	if actor == nil {
		return TaskScope{AssigneeIDs: []uint64{}}, nil
	}

	switch actor.Role {
	case models.RoleAdmin:
		return TaskScope{All: true}, nil
	case models.RoleManager, models.RoleTeamLeader:
		ids, err := s.hierarchyScope(actor)
		if err != nil {
			return TaskScope{}, err
		}
		return TaskScope{AssigneeIDs: ids}, nil
	default:
		return TaskScope{AssigneeIDs: []uint64{actor.ID}}, nil
	}
}

// VisibleTaskIDs returns the tasks the actor may list, sorted by id.
func (s *AccessService) VisibleTaskIDs(actor *models.User) ([]uint64, error) {
	scope, err := s.TaskScope(actor)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	if scope.All {
		tasks, _, err = s.taskRepo.List(repository.TaskFilter{})
	} else {
		tasks, err = s.taskRepo.FindByAssigneeIn(scope.AssigneeIDs)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	ids := newIDSet()
	for _, t := range tasks {
		ids.add(t.ID)
	}
	return ids.sorted(), nil
}

// IsUserVisible reports whether target is in the actor's visible set.
func (s *AccessService) IsUserVisible(actor *models.User, targetID uint64) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if actor.Role == models.RoleAdmin || actor.ID == targetID {
		return true, nil
	}
	ids, err := s.VisibleUserIDs(actor)
	if err != nil {
		return false, err
	}
	_, found := slices.BinarySearch(ids, targetID)
	return found, nil
}

// hierarchyScope collects everyone sharing a project where the actor holds
// the project role matching their global role. Managers never see Admins;
// Team Leaders see everyone on their projects.
func (s *AccessService) hierarchyScope(actor *models.User) ([]uint64, error) {
	projectRole := models.ProjectRoleTeamLeader
	if actor.Role == models.RoleManager {
		projectRole = models.ProjectRoleManager
	}

	// The actor is always included, even with no led projects, so an
	// unstaffed Manager or Team Leader still sees their own tasks.
	visible := newIDSet(actor.ID)

	led, err := s.assignmentRepo.FindByUserAndRole(actor.ID, projectRole)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignments: %w", err)
	}

	for _, a := range led {
		members, err := s.assignmentRepo.FindByProject(a.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to load project members: %w", err)
		}
		for _, m := range members {
			if m.User == nil {
				continue
			}
			if actor.Role == models.RoleManager && m.User.Role == models.RoleAdmin {
				continue
			}
			visible.add(m.UserID)
		}
	}

	return visible.sorted(), nil
}

// CanMutateTask decides whether actor may change the status of, or delete, task.
func (s *AccessService) CanMutateTask(actor *models.User, task *models.Task) (bool, error) {
	if actor == nil {
		return false, nil
	}
	if task.AssigneeID == nil {
		return true, nil
	}
	if *task.AssigneeID == actor.ID {
		return true, nil
	}

	assignee, err := s.userRepo.FindByID(*task.AssigneeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Dangling assignee, treated as unowned
			return true, nil
		}
		return false, fmt.Errorf("failed to load assignee: %w", err)
	}

	switch actor.Role {
	case models.RoleAdmin:
		return assignee.Role != models.RoleAdmin, nil
	case models.RoleManager:
		if assignee.Role != models.RoleTeamLeader && assignee.Role != models.RoleMember {
			return false, nil
		}
		return s.sharesProject(actor.ID, models.ProjectRoleManager, assignee.ID)
	case models.RoleTeamLeader:
		if assignee.Role != models.RoleMember {
			return false, nil
		}
		return s.sharesProject(actor.ID, models.ProjectRoleTeamLeader, assignee.ID)
	default:
		return false, nil
	}
}

// CanMutateTaskByID resolves both sides before applying CanMutateTask.
func (s *AccessService) CanMutateTaskByID(actorID, taskID uint64) (bool, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrTaskNotFound
		}
		return false, fmt.Errorf("failed to find task: %w", err)
	}

	actor, err := s.ResolveActor(actorID)
	if err != nil {
		return false, err
	}

	return s.CanMutateTask(actor, task)
}

// AuthorizeTaskMutation loads taskID and returns it when actor may mutate it.
func (s *AccessService) AuthorizeTaskMutation(actor *models.User, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	allowed, err := s.CanMutateTask(actor, task)
	if err != nil {
		return nil, err
	}
	if !allowed {
		if actor == nil {
			return nil, ErrNotAuthenticated
		}
		return nil, ErrTaskPermissionDenied
	}
	return task, nil
}

// sharesProject reports whether targetID is assigned, in any role, to a
// project where actorID holds role.
func (s *AccessService) sharesProject(actorID uint64, role models.ProjectRole, targetID uint64) (bool, error) {
	held, err := s.assignmentRepo.FindByUserAndRole(actorID, role)
	if err != nil {
		return false, fmt.Errorf("failed to load assignments: %w", err)
	}
	if len(held) == 0 {
		return false, nil
	}

	projects := newIDSet()
	for _, a := range held {
		projects.add(a.ProjectID)
	}

	targetAssignments, err := s.assignmentRepo.FindByUser(targetID)
	if err != nil {
		return false, fmt.Errorf("failed to load assignments: %w", err)
	}
	for _, a := range targetAssignments {
		if projects.has(a.ProjectID) {
			return true, nil
		}
	}
	return false, nil
}

// CanKick returns nil when actor may remove target from the system.
func (s *AccessService) CanKick(actor, target *models.User) error {
	if actor == nil {
		return ErrNotAuthenticated
	}

	switch actor.Role {
	case models.RoleAdmin:
		if target.Role == models.RoleAdmin {
			return ErrCannotKickAdmin
		}
		return nil
	case models.RoleManager:
		if target.Role != models.RoleTeamLeader && target.Role != models.RoleMember {
			return ErrManagerKickScope
		}
		return nil
	default:
		return ErrKickNotAllowed
	}
}

// TeamLeaderAssignableUserIDs lists the TeamMember-role users of the named
// project. It is empty unless the actor is a Team Leader and the project exists.
func (s *AccessService) TeamLeaderAssignableUserIDs(actor *models.User, projectName string) ([]uint64, error) {
	if actor == nil || actor.Role != models.RoleTeamLeader {
		return []uint64{}, nil
	}

	project, err := s.projectRepo.FindByName(projectName)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []uint64{}, nil
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	assignments, err := s.assignmentRepo.FindByProject(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project members: %w", err)
	}

	ids := newIDSet()
	for _, a := range assignments {
		if a.ProjectRole == models.ProjectRoleTeamMember {
			ids.add(a.UserID)
		}
	}
	return ids.sorted(), nil
}

type idSet map[uint64]struct{}

func newIDSet(ids ...uint64) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set.add(id)
	}
	return set
}

func (s idSet) add(id uint64) { s[id] = struct{}{} }

func (s idSet) has(id uint64) bool {
	_, ok := s[id]
	return ok
}

func (s idSet) sorted() []uint64 {
	out := make([]uint64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
