package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is an in-app message for a user
type Notification struct {
	gorm.Model
	UserID    uint           `gorm:"not null;index" json:"userId"`
	Type      string         `gorm:"type:varchar(50);not null" json:"type"`
	Title     string         `gorm:"type:varchar(255)" json:"title"`
	Message   string         `gorm:"type:text" json:"message"`
	ActionURL string         `gorm:"type:varchar(255)" json:"actionUrl"`
	Metadata  datatypes.JSON `json:"metadata"`
	IsRead    bool           `gorm:"not null;default:false" json:"isRead"`
}
