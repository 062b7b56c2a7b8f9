// Package progress computes per-enrollment completion and owns the
// enrollment/completion write paths.
package progress

import (
	"context"
	"errors"

	"learnhub/errs"
	"learnhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Summary struct {
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// Percent is completed/total*100; a course with no lessons is trivially 0%
// complete, never NaN.
func Percent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

// CourseProgress counts the course's lessons and the viewer's completed ones.
func (s *Service) CourseProgress(ctx context.Context, userID, courseID uuid.UUID) (Summary, error) {
	var total int64
	err := s.DB.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("course_id = ?", courseID).
		Count(&total).Error
	if err != nil {
		return Summary{}, errs.Transient("count lessons", err)
	}

	var completed int64
	err = s.DB.WithContext(ctx).
		Model(&models.LessonProgress{}).
		Where("user_id = ? AND is_completed = ? AND lesson_id IN (?)",
			userID, true,
			s.DB.Model(&models.Lesson{}).Select("id").Where("course_id = ?", courseID),
		).
		Count(&completed).Error
	if err != nil {
		return Summary{}, errs.Transient("count completed lessons", err)
	}

	return Summary{
		Completed: int(completed),
		Total:     int(total),
		Percent:   Percent(int(completed), int(total)),
	}, nil
}

// MarkLessonComplete upserts on the (user, lesson) unique key; marking twice
// has the same observable effect as once.
func (s *Service) MarkLessonComplete(ctx context.Context, userID, lessonID uuid.UUID) error {
	var lesson models.Lesson
	if err := s.DB.WithContext(ctx).First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotFound
		}
		return errs.Transient("find lesson", err)
	}

	row := models.LessonProgress{
		UserID:      userID,
		LessonID:    lessonID,
		IsCompleted: true,
	}
	err := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lesson_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_completed", "updated_at"}),
		}).
		Create(&row).Error
	if err != nil {
		return errs.Transient("mark lesson complete", err)
	}
	return nil
}

// Enroll registers the viewer on a published course. The (user, course)
// unique key absorbs duplicate attempts, so a double-clicked enroll button
// still produces a single row.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) error {
	var course models.Course
	err := s.DB.WithContext(ctx).
		Where("id = ? AND status = ?", courseID, models.StatusPublished).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrNotFound
		}
		return errs.Transient("find course", err)
	}

	row := models.Enrollment{UserID: userID, CourseID: courseID}
	err = s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
			DoNothing: true,
		}).
		Create(&row).Error
	if err != nil {
		return errs.Transient("enroll", err)
	}
	return nil
}

// IsEnrolled reports whether the (user, course) enrollment row exists.
func (s *Service) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&count).Error
	if err != nil {
		return false, errs.Transient("check enrollment", err)
	}
	return count > 0, nil
}

// EnrolledCourseIDs lists the course ids the viewer is enrolled in, scoped to
// the viewer's own enrollments.
func (s *Service) EnrolledCourseIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.DB.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("user_id = ?", userID).
		Pluck("course_id", &ids).Error
	if err != nil {
		return nil, errs.Transient("list enrollments", err)
	}
	return ids, nil
}
