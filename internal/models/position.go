package models

type Position struct {
	ID   uint64 `gorm:"primarykey" json:"id"`
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

var DefaultPositions = []string{"Developer", "Tester", "Designer", "Analyst"}
