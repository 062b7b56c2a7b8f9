package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	StatusDraft     CourseStatus = "draft"
	StatusPublished CourseStatus = "published"
	StatusArchived  CourseStatus = "archived"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Slug      string    `gorm:"unique" json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Course struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string       `gorm:"not null" json:"title"`
	Description  string       `json:"description"`
	ThumbnailURL string       `json:"thumbnail_url"`
	CategoryID   uuid.UUID    `gorm:"type:uuid" json:"category_id"`
	InstructorID uuid.UUID    `gorm:"type:uuid" json:"instructor_id"`
	Status       CourseStatus `gorm:"default:draft" json:"status"`
	Duration     string       `json:"duration"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`

	Category   *Category `gorm:"foreignKey:CategoryID" json:"-"`
	Instructor *Profile  `gorm:"foreignKey:InstructorID" json:"-"`
	Lessons    []Lesson  `gorm:"foreignKey:CourseID" json:"-"`
	Reviews    []Review  `gorm:"foreignKey:CourseID" json:"-"`
}

type Lesson struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;index" json:"course_id"`
	Title      string    `gorm:"not null" json:"title"`
	Duration   string    `json:"duration"`
	OrderIndex int       `json:"order_index"`
	IsPreview  bool      `json:"is_preview"`
	CreatedAt  time.Time `json:"created_at"`
}

// Review is unique per (user, course); rating is an integer in [1,5].
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reviews_user_course" json:"user_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_reviews_user_course" json:"course_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	Reviewer *Profile `gorm:"foreignKey:UserID" json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
