package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ProfileImage string `gorm:"default:''"`
	Name         string `gorm:"default:''"`
	Email        string `gorm:"unique;not null"`
	Role         Role   `gorm:"type:varchar(20);default:'STUDENT'"` // STUDENT, INSTRUCTOR, ADMIN
	Points       int    `gorm:"not null;default:0"`
	IsDeleted    bool   `gorm:"default:false"`
}
