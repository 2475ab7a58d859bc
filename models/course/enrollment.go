package course

import "time"

// EnrollmentStatus is the lifecycle state of an enrollment
type EnrollmentStatus string

const (
	EnrollmentEnrolled   EnrollmentStatus = "ENROLLED"
	EnrollmentInProgress EnrollmentStatus = "IN_PROGRESS"
	EnrollmentCompleted  EnrollmentStatus = "COMPLETED"
	EnrollmentDropped    EnrollmentStatus = "DROPPED"
)

// Enrollment tracks a user's enrollment in a course with progress
type Enrollment struct {
	ID           uint             `json:"id" gorm:"primaryKey"`
	UserID       uint             `json:"user_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course"`
	CourseID     uint             `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_user_course;index"`
	Status       EnrollmentStatus `json:"status" gorm:"type:varchar(20);not null"`
	Progress     int              `json:"progress" gorm:"not null"` // Completion percentage (0-100)
	LastLessonID *uint            `json:"last_lesson_id"`
	EnrolledAt   time.Time        `json:"enrolled_at" gorm:"not null"`
	CompletedAt  *time.Time       `json:"completed_at"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}
