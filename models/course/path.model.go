package course

import (
	"time"

	"gorm.io/gorm"
)

// LearningPath is an ordered sequence of courses
type LearningPath struct {
	gorm.Model
	Title string `json:"title"`

	Courses []PathCourse `json:"courses,omitempty" gorm:"foreignKey:PathID"`
}

// PathCourse places a course at a position inside a path
type PathCourse struct {
	ID         uint `json:"id" gorm:"primaryKey"`
	PathID     uint `json:"path_id" gorm:"not null;uniqueIndex:idx_path_course"`
	CourseID   uint `json:"course_id" gorm:"not null;uniqueIndex:idx_path_course;index"`
	OrderIndex int  `json:"order_index" gorm:"not null"`
}

// PathEnrollment registers a user on a learning path
type PathEnrollment struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_path_enrollment_user_path"`
	PathID      uint       `json:"path_id" gorm:"not null;uniqueIndex:idx_path_enrollment_user_path"`
	EnrolledAt  time.Time  `json:"enrolled_at" gorm:"not null"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
