package learning

import (
	"context"
	"fmt"
	"lms/models/course"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseProgress is the caller's standing in one course
type CourseProgress struct {
	Enrollment         course.Enrollment `json:"enrollment"`
	TotalLessons       int64             `json:"total_lessons"`
	CompletedLessonIDs []uint            `json:"completed_lesson_ids"`
}

// Enroll registers the caller in a published course. Enrolling twice
// returns the existing enrollment.
func (s *Service) Enroll(ctx context.Context, caller *Caller, courseID uint) (*course.Enrollment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	var enrollment *course.Enrollment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c course.Course
		if err := tx.Where("id = ? AND is_published = ?", courseID, true).First(&c).Error; err != nil {
			return notFound(err, "course")
		}
		if _, err := s.enrollIfAbsent(tx, caller.UserID, courseID); err != nil {
			return err
		}
		var err error
		enrollment, err = findEnrollment(tx, caller.UserID, courseID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// Unenroll removes the caller's enrollment together with its lesson
// completions and quiz attempts.
func (s *Service) Unenroll(ctx context.Context, caller *Caller, courseID uint) error {
	if err := requireCaller(caller); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := findEnrollment(tx, caller.UserID, courseID)
		if err != nil {
			return err
		}
		attempts := tx.Model(&course.QuizAttempt{}).Select("id").Where("enrollment_id = ?", enrollment.ID)
		if err := tx.Where("attempt_id IN (?)", attempts).Delete(&course.AttemptAnswer{}).Error; err != nil {
			return fmt.Errorf("delete attempt answers: %w", err)
		}
		if err := tx.Where("enrollment_id = ?", enrollment.ID).Delete(&course.QuizAttempt{}).Error; err != nil {
			return fmt.Errorf("delete attempts: %w", err)
		}
		if err := tx.Where("enrollment_id = ?", enrollment.ID).Delete(&course.LessonCompletion{}).Error; err != nil {
			return fmt.Errorf("delete lesson completions: %w", err)
		}
		if err := tx.Delete(enrollment).Error; err != nil {
			return fmt.Errorf("delete enrollment: %w", err)
		}
		return nil
	})
}

// EnrollPath registers the caller on a learning path and enrolls them in the
// path's first course. Path courses the caller already completed unlock their
// successors straight away.
func (s *Service) EnrollPath(ctx context.Context, caller *Caller, pathID uint) (*course.PathEnrollment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	var (
		pathEnrollment course.PathEnrollment
		effects        []sideEffect
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var path course.LearningPath
		if err := tx.First(&path, pathID).Error; err != nil {
			return notFound(err, "learning path")
		}

		pe := course.PathEnrollment{UserID: caller.UserID, PathID: path.ID, EnrolledAt: s.now()}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&pe).Error; err != nil {
			return fmt.Errorf("create path enrollment: %w", err)
		}
		if err := tx.Where("user_id = ? AND path_id = ?", caller.UserID, path.ID).First(&pathEnrollment).Error; err != nil {
			return fmt.Errorf("reload path enrollment: %w", err)
		}

		var steps []course.PathCourse
		if err := tx.Where("path_id = ?", path.ID).Order("order_index asc, id asc").Find(&steps).Error; err != nil {
			return fmt.Errorf("load path courses: %w", err)
		}
		if len(steps) == 0 {
			return nil
		}
		if _, err := s.enrollIfAbsent(tx, caller.UserID, steps[0].CourseID); err != nil {
			return err
		}

		courseIDs := make([]uint, 0, len(steps))
		for _, step := range steps {
			courseIDs = append(courseIDs, step.CourseID)
		}
		var done []uint
		if err := tx.Model(&course.Enrollment{}).
			Where("user_id = ? AND course_id IN ? AND status = ?", caller.UserID, courseIDs, course.EnrollmentCompleted).
			Pluck("course_id", &done).Error; err != nil {
			return fmt.Errorf("load completed path courses: %w", err)
		}
		completed := make(map[uint]bool, len(done))
		for _, id := range done {
			completed[id] = true
		}
		for _, step := range steps {
			if !completed[step.CourseID] {
				continue
			}
			effs, err := s.unlockPaths(tx, caller.UserID, step.CourseID)
			if err != nil {
				return err
			}
			effects = append(effects, effs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, effects)
	return &pathEnrollment, nil
}

// Progress reports the caller's progress in a course
func (s *Service) Progress(ctx context.Context, caller *Caller, courseID uint) (*CourseProgress, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	enrollment, err := findEnrollment(db, caller.UserID, courseID)
	if err != nil {
		return nil, err
	}
	out := &CourseProgress{Enrollment: *enrollment, CompletedLessonIDs: []uint{}}
	if err := db.Model(&course.Lesson{}).Where("course_id = ?", courseID).Count(&out.TotalLessons).Error; err != nil {
		return nil, fmt.Errorf("count lessons: %w", err)
	}
	if err := db.Model(&course.LessonCompletion{}).
		Where("enrollment_id = ?", enrollment.ID).
		Order("completed_at asc").
		Pluck("lesson_id", &out.CompletedLessonIDs).Error; err != nil {
		return nil, fmt.Errorf("load completed lessons: %w", err)
	}
	return out, nil
}

// ListEnrollments returns every enrollment of the caller, newest first
func (s *Service) ListEnrollments(ctx context.Context, caller *Caller) ([]course.Enrollment, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	var enrollments []course.Enrollment
	if err := s.db.WithContext(ctx).Where("user_id = ?", caller.UserID).Order("enrolled_at desc").Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}
