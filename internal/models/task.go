package models

import "gorm.io/gorm"

type Task struct {
	gorm.Model

	BoardID     uint   `gorm:"not null;index"`
	Title       string `gorm:"not null"`
	Description string
	Status      string  `gorm:"not null;default:to-do"`
	Priority    string  `gorm:"not null;default:medium"`
	AssigneeID  *uint   `gorm:"index"`
	ReviewerID  *uint   `gorm:"index"`
	DueDate     *string `gorm:"type:varchar(10)"`

	// Relationships
	Board    Board         `gorm:"foreignKey:BoardID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User         `gorm:"foreignKey:AssigneeID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Reviewer *User         `gorm:"foreignKey:ReviewerID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Comments []TaskComment `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
