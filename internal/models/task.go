package models

import (
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusNeedToStart TaskStatus = "need_to_start"
	TaskStatusOngoing     TaskStatus = "ongoing"
	TaskStatusCompleted   TaskStatus = "completed"
)

// NormalizeStatus collapses free-form status input onto the three canonical
// states. Input matching none of them is kept, lowercased with spaces as
// underscores.
func NormalizeStatus(input string) TaskStatus {
	s := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(input)), " ", "_")
	switch {
	case s == "":
		return TaskStatusNeedToStart
	case strings.Contains(s, "ongoing") || s == "in_progress":
		return TaskStatusOngoing
	case strings.Contains(s, "complete") || s == "done":
		return TaskStatusCompleted
	case strings.Contains(s, "start") || s == "todo" || s == "yet_to_start":
		return TaskStatusNeedToStart
	default:
		return TaskStatus(s)
	}
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Status      TaskStatus `gorm:"type:varchar(40);not null;default:'need_to_start'" json:"status"`
	DueDate     *time.Time `json:"due_date"`
	AssigneeID  *uint64    `gorm:"index" json:"assignee_id"`
	ProjectID   *uint64    `gorm:"index" json:"project_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Relations
	Assignee *User    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Project  *Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
}
