package course

import (
	"time"

	"gorm.io/gorm"
)

// Lesson is a single unit of content inside a module. Progress is measured
// against the number of lessons a course currently holds.
type Lesson struct {
	gorm.Model
	CourseID    uint   `json:"course_id" gorm:"index;not null"`
	ModuleID    uint   `json:"module_id" gorm:"index;not null"`
	Title       string `json:"title"`
	ContentType string `json:"content_type" gorm:"default:'TEXT'"` // TEXT, VIDEO, IMAGE
	TextContent string `json:"text_content" gorm:"type:text"`
	VideoURL    string `json:"video_url"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
}

// LessonCompletion marks a lesson done for one enrollment. Rows are never
// updated; completing a lesson twice is a no-op.
type LessonCompletion struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	EnrollmentID uint      `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_completion_enrollment_lesson"`
	LessonID     uint      `json:"lesson_id" gorm:"not null;uniqueIndex:idx_completion_enrollment_lesson"`
	CompletedAt  time.Time `json:"completed_at" gorm:"not null"`
}
