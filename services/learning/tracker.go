package learning

import (
	"context"
	"errors"
	"fmt"
	"lms/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompleteLesson marks a lesson done for the caller and returns the new
// course progress percentage. The first time progress reaches 100 the
// enrollment is completed, the path cascade runs and a course certificate is
// issued, all in the same transaction as the progress write.
func (s *Service) CompleteLesson(ctx context.Context, caller *Caller, courseID, lessonID uint) (int, error) {
	if err := requireCaller(caller); err != nil {
		return 0, err
	}

	var (
		progress int
		effects  []sideEffect
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := findEnrollment(tx, caller.UserID, courseID)
		if err != nil {
			return err
		}

		var lesson course.Lesson
		if err := tx.Where("id = ? AND course_id = ?", lessonID, courseID).First(&lesson).Error; err != nil {
			return notFound(err, "lesson")
		}

		completion := course.LessonCompletion{
			EnrollmentID: enrollment.ID,
			LessonID:     lesson.ID,
			CompletedAt:  s.now(),
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&completion).Error; err != nil {
			return fmt.Errorf("record lesson completion: %w", err)
		}

		progress, err = courseProgress(tx, enrollment.ID, courseID)
		if err != nil {
			return err
		}
		// a completion never lowers progress, even if lessons were added since
		progress = max(progress, enrollment.Progress)

		updates := map[string]any{
			"progress":       progress,
			"last_lesson_id": lesson.ID,
		}
		switch {
		case enrollment.Status == course.EnrollmentCompleted:
			// status and completed_at stay as first recorded
		case progress >= 100:
			updates["status"] = course.EnrollmentCompleted
			updates["completed_at"] = s.now()
			effects, err = s.onCourseCompleted(tx, caller.UserID, courseID)
			if err != nil {
				return err
			}
		default:
			updates["status"] = course.EnrollmentInProgress
		}

		if err := tx.Model(enrollment).Updates(updates).Error; err != nil {
			return fmt.Errorf("update enrollment progress: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.dispatch(ctx, effects)
	return progress, nil
}

// onCourseCompleted runs the durable part of the completion chain and returns
// the side effects to fire once it commits.
func (s *Service) onCourseCompleted(tx *gorm.DB, userID, courseID uint) ([]sideEffect, error) {
	var c course.Course
	if err := tx.Select("id", "title").First(&c, courseID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load course: %w", err)
	}

	effects, err := s.unlockPaths(tx, userID, courseID)
	if err != nil {
		return nil, err
	}

	cert, _, err := s.issueCertificate(tx, CertificateRequest{
		UserID:      userID,
		Type:        course.CertificateCourse,
		ReferenceID: courseID,
	})
	if err != nil {
		return nil, err
	}

	return append([]sideEffect{
		s.awardPoints(userID, courseCompletionPoints, "Completed course: "+c.Title),
		s.notify(NotificationPayload{
			UserID:    userID,
			Type:      NotifyCourseCompleted,
			Title:     "Course completed",
			Message:   fmt.Sprintf("You completed %s. Your certificate is ready.", c.Title),
			ActionURL: "/certificates/" + cert.CertificateNumber,
			Metadata:  map[string]any{"course_id": courseID, "certificate_id": cert.ID},
		}),
		s.emailUser(userID, "Course completed: "+c.Title,
			certificateEmail(c.Title, cert, s.opts.BaseURL+"/certificates/verify/"+cert.CertificateNumber)),
	}, effects...), nil
}

// courseProgress recomputes progress from completion rows, counting only
// lessons that still belong to the course.
func courseProgress(tx *gorm.DB, enrollmentID, courseID uint) (int, error) {
	var total, completed int64
	if err := tx.Model(&course.Lesson{}).Where("course_id = ?", courseID).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count lessons: %w", err)
	}
	if err := tx.Model(&course.LessonCompletion{}).
		Joins("JOIN lessons ON lessons.id = lesson_completions.lesson_id AND lessons.deleted_at IS NULL").
		Where("lesson_completions.enrollment_id = ? AND lessons.course_id = ?", enrollmentID, courseID).
		Count(&completed).Error; err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return percentage(completed, total), nil
}

func findEnrollment(tx *gorm.DB, userID, courseID uint) (*course.Enrollment, error) {
	var enrollment course.Enrollment
	err := tx.Where("user_id = ? AND course_id = ?", userID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotEnrolled
	}
	if err != nil {
		return nil, fmt.Errorf("load enrollment: %w", err)
	}
	return &enrollment, nil
}
