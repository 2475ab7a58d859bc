package course

import "time"

// CertificateType tells which reference a certificate points at
type CertificateType string

const (
	CertificateCourse CertificateType = "COURSE"
	CertificatePath   CertificateType = "PATH"
)

// Certificate represents an issued certificate for a completed course or path.
// Exactly one of CourseID and PathID is set.
type Certificate struct {
	ID                uint            `json:"id" gorm:"primaryKey"`
	UserID            uint            `json:"user_id" gorm:"not null;uniqueIndex:idx_certificate_user_course;uniqueIndex:idx_certificate_user_path"`
	Type              CertificateType `json:"type" gorm:"type:varchar(10);not null"`
	CourseID          *uint           `json:"course_id" gorm:"uniqueIndex:idx_certificate_user_course"`
	PathID            *uint           `json:"path_id" gorm:"uniqueIndex:idx_certificate_user_path"`
	CertificateNumber string          `json:"certificate_number" gorm:"type:varchar(64);uniqueIndex;not null"`
	IsValid           bool            `json:"is_valid" gorm:"not null"`
	IssuedAt          time.Time       `json:"issued_at" gorm:"not null"`
	RevokedAt         *time.Time      `json:"revoked_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}
