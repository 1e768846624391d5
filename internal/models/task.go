package models

import "gorm.io/gorm"

type Task struct {
	gorm.Model

	Title     string `gorm:"not null"`
	Content   string
	Completed bool `gorm:"default:false"`
	UserID    uint `gorm:"not null;index"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
