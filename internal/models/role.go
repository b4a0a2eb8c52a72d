package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Role is the global standing of a user.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleTeamLeader Role = "team_leader"
	RoleMember     Role = "member"
)

// ProjectRole is the standing of a user within one project.
type ProjectRole string

const (
	ProjectRoleManager    ProjectRole = "manager"
	ProjectRoleTeamLeader ProjectRole = "team_leader"
	ProjectRoleTeamMember ProjectRole = "team_member"
)

// ParseRole maps free-form input onto a Role. Unknown or empty input is a Member.
func ParseRole(input string) Role {
	switch canonicalRoleKey(input) {
	case "admin":
		return RoleAdmin
	case "manager":
		return RoleManager
	case "team_leader":
		return RoleTeamLeader
	default:
		return RoleMember
	}
}

// ParseProjectRole maps free-form input onto a ProjectRole. Unknown or empty input is a TeamMember.
func ParseProjectRole(input string) ProjectRole {
	switch canonicalRoleKey(input) {
	case "manager":
		return ProjectRoleManager
	case "team_leader":
		return ProjectRoleTeamLeader
	default:
		return ProjectRoleTeamMember
	}
}

// canonicalRoleKey lowercases, trims and collapses spaces, hyphens and
// underscores into single underscores, so "Team - Leader" becomes "team_leader".
func canonicalRoleKey(input string) string {
	fields := strings.FieldsFunc(strings.ToLower(strings.TrimSpace(input)), func(r rune) bool {
		return r == ' ' || r == '-' || r == '_' || r == '\t'
	})
	key := strings.Join(fields, "_")
	switch key {
	case "teamleader":
		return "team_leader"
	case "teammember":
		return "team_member"
	}
	return key
}

// Label is the human readable form used in contact listings.
func (r ProjectRole) Label() string {
	switch r {
	case ProjectRoleManager:
		return "Manager"
	case ProjectRoleTeamLeader:
		return "Team Leader"
	default:
		return "Team Member"
	}
}

// Scan normalizes whatever is stored in the column, so a row written as
// "TEAM LEADER" by an older client still loads as RoleTeamLeader.
func (r *Role) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*r = RoleMember
	case string:
		*r = ParseRole(v)
	case []byte:
		*r = ParseRole(string(v))
	default:
		return fmt.Errorf("unsupported role column type %T", value)
	}
	return nil
}

func (r Role) Value() (driver.Value, error) {
	if r == "" {
		return string(RoleMember), nil
	}
	return string(r), nil
}

func (r *ProjectRole) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*r = ProjectRoleTeamMember
	case string:
		*r = ParseProjectRole(v)
	case []byte:
		*r = ParseProjectRole(string(v))
	default:
		return fmt.Errorf("unsupported project role column type %T", value)
	}
	return nil
}

func (r ProjectRole) Value() (driver.Value, error) {
	if r == "" {
		return string(ProjectRoleTeamMember), nil
	}
	return string(r), nil
}
