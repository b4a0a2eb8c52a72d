package dto

import (
	"time"

	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/services"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectRefDTO is the short form of a project embedded in other resources
type ProjectRefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TeamMemberDTO is one assignment of a project team
type TeamMemberDTO struct {
	UserID      uint64             `json:"user_id"`
	FullName    string             `json:"full_name"`
	Email       string             `json:"email"`
	Title       string             `json:"title"`
	Position    string             `json:"position"`
	ProjectRole models.ProjectRole `json:"project_role"`
}

type ProjectTeamDTO struct {
	Project ProjectDTO      `json:"project"`
	Members []TeamMemberDTO `json:"members"`
}

func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:        project.ID,
		Name:      project.Name,
		Status:    project.Status,
		Progress:  project.Progress,
		CreatedAt: project.CreatedAt,
	}
}

func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return out
}

// ToProjectTeamDTO skips assignments whose user no longer loads
func ToProjectTeamDTO(team services.ProjectTeam) ProjectTeamDTO {
	members := make([]TeamMemberDTO, 0, len(team.Assignments))
	for _, a := range team.Assignments {
		if a.User == nil {
			continue
		}
		members = append(members, TeamMemberDTO{
			UserID:      a.User.ID,
			FullName:    a.User.FullName,
			Email:       a.User.Email,
			Title:       a.User.Title,
			Position:    a.User.PositionName(),
			ProjectRole: a.ProjectRole,
		})
	}

	return ProjectTeamDTO{
		Project: ToProjectDTO(team.Project),
		Members: members,
	}
}
