package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	FullName     string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	LoginID      *int      `gorm:"uniqueIndex" json:"login_id"`
	IDCardNumber *string   `gorm:"type:varchar(64)" json:"-"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null" json:"role"`
	Title        string    `gorm:"type:varchar(255)" json:"title"`
	PositionID   *uint64   `json:"position_id"`
	Temporary    bool      `gorm:"not null;default:false" json:"temporary"`
	PhotoURL     *string   `gorm:"type:varchar(1024)" json:"photo_url"`
	Age          *int      `json:"age"`
	Skills       *string   `gorm:"type:text" json:"skills"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Password reset challenge, cleared once consumed or expired
	PendingAnswer   *string    `gorm:"type:varchar(16)" json:"-"`
	AnswerExpiresAt *time.Time `json:"-"`

	// Relations
	Position *Position `gorm:"foreignKey:PositionID" json:"position,omitempty"`
}

// HasPendingChallenge reports whether a reset challenge is stored on the record.
func (u *User) HasPendingChallenge() bool {
	return u.PendingAnswer != nil && u.AnswerExpiresAt != nil
}

// PositionName returns the position name or "" when none is set.
func (u *User) PositionName() string {
	if u.Position == nil {
		return ""
	}
	return u.Position.Name
}
