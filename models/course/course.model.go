package course

import "gorm.io/gorm"

// Course represents a learning course
type Course struct {
	gorm.Model
	Title       string `json:"title"`
	IsPublished bool   `json:"is_published"`

	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}
