package models

import "gorm.io/gorm"

type UserProfile struct {
	gorm.Model

	UserID   uint   `gorm:"not null;uniqueIndex"`
	FullName string `gorm:"not null"`
}
