package dto

import (
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/services"
	"github.com/yukikurage/taker-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        uint64      `json:"id"`
	FullName  string      `json:"full_name"`
	Email     string      `json:"email"`
	LoginID   *int        `json:"login_id"`
	Role      models.Role `json:"role"`
	Title     string      `json:"title"`
	Position  string      `json:"position"`
	Temporary bool        `json:"temporary"`
	PhotoURL  *string     `json:"photo_url"`
	Age       *int        `json:"age"`
	Skills    *string     `json:"skills"`
}

// UserRefDTO is the short form of a user embedded in other resources
type UserRefDTO struct {
	ID       uint64 `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

// UserSummaryDTO is a user with its first project context
type UserSummaryDTO struct {
	UserDTO
	CurrentProject string `json:"current_project"`
	ManagerName    string `json:"manager_name"`
	TeamLeaderName string `json:"team_leader_name"`
	CompletedTasks int64  `json:"completed_tasks"`
}

type UserListResponse struct {
	Users      []UserSummaryDTO         `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ContactDTO is a person the current user works with
type ContactDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
	Email string `json:"email"`
	Type  string `json:"type"`
}

// ProjectMembersDTO lists the team members of one project
type ProjectMembersDTO struct {
	ProjectName string    `json:"project_name"`
	Members     []UserDTO `json:"members"`
}

// ForgotPasswordResponse carries the reset question back to the caller
type ForgotPasswordResponse struct {
	Message  string `json:"message"`
	Question string `json:"question"`
	Email    string `json:"email"`
}

func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		LoginID:   user.LoginID,
		Role:      user.Role,
		Title:     user.Title,
		Position:  user.PositionName(),
		Temporary: user.Temporary,
		PhotoURL:  user.PhotoURL,
		Age:       user.Age,
		Skills:    user.Skills,
	}
}

func ToUserRefDTO(user models.User) UserRefDTO {
	return UserRefDTO{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
}

func ToUserSummaryDTO(summary services.UserSummary) UserSummaryDTO {
	return UserSummaryDTO{
		UserDTO:        ToUserDTO(summary.User),
		CurrentProject: summary.CurrentProject,
		ManagerName:    summary.ManagerName,
		TeamLeaderName: summary.TeamLeaderName,
		CompletedTasks: summary.CompletedTasks,
	}
}

// ToUserListResponse converts a page of summaries to UserListResponse
func ToUserListResponse(summaries []services.UserSummary, params utils.PaginationParams, total int64) UserListResponse {
	users := make([]UserSummaryDTO, len(summaries))
	for i, s := range summaries {
		users[i] = ToUserSummaryDTO(s)
	}

	return UserListResponse{
		Users: users,
		Pagination: utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	}
}

func ToContactDTO(contact services.Contact) ContactDTO {
	return ContactDTO{
		ID:    contact.ID,
		Name:  contact.Name,
		Title: contact.Title,
		Email: contact.Email,
		Type:  contact.Type,
	}
}

func ToContactDTOs(contacts []services.Contact) []ContactDTO {
	out := make([]ContactDTO, len(contacts))
	for i, c := range contacts {
		out[i] = ToContactDTO(c)
	}
	return out
}

func ToProjectMembersDTOs(groups []services.ProjectMembers) []ProjectMembersDTO {
	out := make([]ProjectMembersDTO, len(groups))
	for i, g := range groups {
		members := make([]UserDTO, len(g.Members))
		for j, m := range g.Members {
			members[j] = ToUserDTO(m)
		}
		out[i] = ProjectMembersDTO{ProjectName: g.ProjectName, Members: members}
	}
	return out
}
