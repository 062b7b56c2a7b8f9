// Package catalog joins raw course records into the derived view models the
// catalog and course pages render.
package catalog

import (
	"context"
	"errors"

	"learnhub/errs"
	"learnhub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{DB: db}
}

// ListPublished returns the catalog view of every published course. Drafts
// and archived courses are filtered by the query itself, not by the caller.
func (s *Service) ListPublished(ctx context.Context) ([]CourseView, error) {
	var courses []models.Course
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Preload("Instructor").
		Preload("Reviews").
		Where("status = ?", models.StatusPublished).
		Find(&courses).Error
	if err != nil {
		return nil, errs.Transient("list published courses", err)
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		count, err := s.enrollmentCount(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, BuildCourseView(course, count))
	}
	return views, nil
}

// GetCourseDetail aggregates one published course with its ordered lessons
// and reviewer-joined reviews. Unpublished courses are invisible on this
// path and yield ErrNotFound.
func (s *Service) GetCourseDetail(ctx context.Context, courseID uuid.UUID) (*CourseDetail, error) {
	var course models.Course
	err := s.DB.WithContext(ctx).
		Preload("Category").
		Preload("Instructor").
		Preload("Lessons").
		Preload("Reviews").
		Preload("Reviews.Reviewer").
		Where("id = ? AND status = ?", courseID, models.StatusPublished).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		return nil, errs.Transient("get course detail", err)
	}

	count, err := s.enrollmentCount(ctx, course.ID)
	if err != nil {
		return nil, err
	}

	return &CourseDetail{
		CourseView:     BuildCourseView(course, count),
		OrderedLessons: SortLessons(course.Lessons),
		Reviews:        BuildReviewViews(course.Reviews),
	}, nil
}

// ListCategories returns all categories for the catalog filter bar.
func (s *Service) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := s.DB.WithContext(ctx).Find(&categories).Error; err != nil {
		return nil, errs.Transient("list categories", err)
	}
	return categories, nil
}

// ListByInstructor returns an instructor's own courses regardless of status.
func (s *Service) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]CourseView, error) {
	return s.list(ctx, s.DB.WithContext(ctx).Where("instructor_id = ?", instructorID), "list instructor courses")
}

// ListAll returns every course in any status, for the admin dashboard.
func (s *Service) ListAll(ctx context.Context) ([]CourseView, error) {
	return s.list(ctx, s.DB.WithContext(ctx), "list all courses")
}

// ListByIDs returns the catalog view of the given courses, e.g. a viewer's
// enrollments. Status is not filtered here: an enrollment outlives a later
// unpublish.
func (s *Service) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]CourseView, error) {
	if len(ids) == 0 {
		return []CourseView{}, nil
	}
	return s.list(ctx, s.DB.WithContext(ctx).Where("id IN ?", ids), "list courses by id")
}

func (s *Service) list(ctx context.Context, query *gorm.DB, op string) ([]CourseView, error) {
	var courses []models.Course
	err := query.
		Preload("Category").
		Preload("Instructor").
		Preload("Reviews").
		Find(&courses).Error
	if err != nil {
		return nil, errs.Transient(op, err)
	}

	views := make([]CourseView, 0, len(courses))
	for _, course := range courses {
		count, err := s.enrollmentCount(ctx, course.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, BuildCourseView(course, count))
	}
	return views, nil
}

// enrollmentCount is a head-only count query; full enrollment rows are never
// transferred for the catalog.
func (s *Service) enrollmentCount(ctx context.Context, courseID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	if err != nil {
		return 0, errs.Transient("count enrollments", err)
	}
	return count, nil
}
