package models

import "time"

// ProjectAssignment links one user to one project with a single project role.
type ProjectAssignment struct {
	ID          uint64      `gorm:"primarykey" json:"id"`
	ProjectID   uint64      `gorm:"not null;uniqueIndex:uk_project_user" json:"project_id"`
	UserID      uint64      `gorm:"not null;uniqueIndex:uk_project_user;index:idx_assignments_user_id" json:"user_id"`
	ProjectRole ProjectRole `gorm:"type:varchar(20);not null" json:"project_role"`
	CreatedAt   time.Time   `json:"created_at"`

	// Relations
	Project *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
