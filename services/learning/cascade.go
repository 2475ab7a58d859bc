package learning

import (
	"context"
	"errors"
	"fmt"
	"lms/models/course"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// unlockPaths runs the learning path cascade for a course the user has just
// completed. It must run inside the completion transaction; completedCourseID
// counts as completed even before its enrollment status is written.
func (s *Service) unlockPaths(tx *gorm.DB, userID, completedCourseID uint) ([]sideEffect, error) {
	var memberships []course.PathCourse
	if err := tx.Where("course_id = ?", completedCourseID).Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("load path memberships: %w", err)
	}

	var effects []sideEffect
	for _, m := range memberships {
		var pathEnrollment course.PathEnrollment
		err := tx.Where("user_id = ? AND path_id = ?", userID, m.PathID).First(&pathEnrollment).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load path enrollment: %w", err)
		}

		var steps []course.PathCourse
		if err := tx.Where("path_id = ?", m.PathID).Order("order_index asc, id asc").Find(&steps).Error; err != nil {
			return nil, fmt.Errorf("load path courses: %w", err)
		}
		idx := -1
		for i, step := range steps {
			if step.CourseID == completedCourseID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		if idx == len(steps)-1 {
			effs, err := s.completePath(tx, userID, pathEnrollment, steps, completedCourseID)
			if err != nil {
				return nil, err
			}
			effects = append(effects, effs...)
			continue
		}

		next := steps[idx+1]
		created, err := s.enrollIfAbsent(tx, userID, next.CourseID)
		if err != nil {
			return nil, err
		}
		if created {
			var nextCourse course.Course
			if err := tx.Select("id", "title").First(&nextCourse, next.CourseID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("load next course: %w", err)
			}
			effects = append(effects, s.notify(NotificationPayload{
				UserID:    userID,
				Type:      NotifyCourseUnlocked,
				Title:     "New course unlocked",
				Message:   fmt.Sprintf("You can now start %s.", nextCourse.Title),
				ActionURL: fmt.Sprintf("/courses/%d", next.CourseID),
				Metadata:  map[string]any{"path_id": m.PathID, "course_id": next.CourseID},
			}))
		}
	}
	return effects, nil
}

// completePath re-derives path completion from enrollment rows every time
// rather than trusting a counter.
func (s *Service) completePath(tx *gorm.DB, userID uint, pe course.PathEnrollment, steps []course.PathCourse, completedCourseID uint) ([]sideEffect, error) {
	courseIDs := make([]uint, 0, len(steps))
	for _, step := range steps {
		courseIDs = append(courseIDs, step.CourseID)
	}

	var done []uint
	if err := tx.Model(&course.Enrollment{}).
		Where("user_id = ? AND course_id IN ? AND status = ?", userID, courseIDs, course.EnrollmentCompleted).
		Pluck("course_id", &done).Error; err != nil {
		return nil, fmt.Errorf("load completed path courses: %w", err)
	}
	completed := map[uint]bool{completedCourseID: true}
	for _, id := range done {
		completed[id] = true
	}
	for _, id := range courseIDs {
		if !completed[id] {
			return nil, nil
		}
	}

	res := tx.Model(&course.PathEnrollment{}).
		Where("id = ? AND completed_at IS NULL", pe.ID).
		Update("completed_at", s.now())
	if res.Error != nil {
		return nil, fmt.Errorf("complete path enrollment: %w", res.Error)
	}

	cert, created, err := s.issueCertificate(tx, CertificateRequest{
		UserID:      userID,
		Type:        course.CertificatePath,
		ReferenceID: pe.PathID,
	})
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 && !created {
		return nil, nil
	}

	var path course.LearningPath
	if err := tx.Select("id", "title").First(&path, pe.PathID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load path: %w", err)
	}
	return []sideEffect{
		s.notify(NotificationPayload{
			UserID:    userID,
			Type:      NotifyPathCompleted,
			Title:     "Learning path completed",
			Message:   fmt.Sprintf("You completed every course in %s.", path.Title),
			ActionURL: "/certificates/" + cert.CertificateNumber,
			Metadata:  map[string]any{"path_id": pe.PathID, "certificate_id": cert.ID},
		}),
		s.emailUser(userID, "Learning path completed: "+path.Title,
			certificateEmail(path.Title, cert, s.opts.BaseURL+"/certificates/verify/"+cert.CertificateNumber)),
	}, nil
}

// enrollIfAbsent creates an ENROLLED enrollment unless one already exists
func (s *Service) enrollIfAbsent(tx *gorm.DB, userID, courseID uint) (bool, error) {
	enrollment := course.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     course.EnrollmentEnrolled,
		EnrolledAt: s.now(),
	}
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment)
	if res.Error != nil {
		return false, fmt.Errorf("enroll in course %d: %w", courseID, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReconcilePaths replays the cascade for every completed course that belongs
// to a path the user is enrolled in. It completes paths whose last course was
// finished before the courses leading to it.
func (s *Service) ReconcilePaths(ctx context.Context) (int, error) {
	type pending struct {
		UserID   uint
		CourseID uint
	}
	var rows []pending
	err := s.db.WithContext(ctx).
		Table("enrollments").
		Select("DISTINCT enrollments.user_id, enrollments.course_id").
		Joins("JOIN path_courses ON path_courses.course_id = enrollments.course_id").
		Joins("JOIN path_enrollments ON path_enrollments.path_id = path_courses.path_id AND path_enrollments.user_id = enrollments.user_id").
		Where("enrollments.status = ?", course.EnrollmentCompleted).
		Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("load completed path enrollments: %w", err)
	}

	processed := 0
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return processed, err
		}
		var effects []sideEffect
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var err error
			effects, err = s.unlockPaths(tx, row.UserID, row.CourseID)
			return err
		})
		if err != nil {
			log.Printf("[LEARNING] reconcile user %d course %d failed: %v", row.UserID, row.CourseID, err)
			continue
		}
		s.dispatch(ctx, effects)
		processed++
	}
	return processed, nil
}
