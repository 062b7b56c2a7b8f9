package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment is existence-only: the presence of a (user, course) row is the
// whole enrollment predicate.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	CreatedAt time.Time `json:"created_at"`
}

// LessonProgress: absence of a row means not completed.
type LessonProgress struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_lesson_progress_user_lesson" json:"user_id"`
	LessonID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_lesson_progress_user_lesson" json:"lesson_id"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (lp *LessonProgress) BeforeCreate(tx *gorm.DB) error {
	if lp.ID == uuid.Nil {
		lp.ID = uuid.New()
	}
	return nil
}
