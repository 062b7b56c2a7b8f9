package catalog

import (
	"sort"

	"learnhub/models"
)

// UnknownName is the placeholder shown when an instructor or category
// reference dangles; a broken join degrades a field, never the whole query.
const UnknownName = "Unknown"

// CourseView is the derived catalog entry. It is recomputed on every fetch
// and never persisted.
type CourseView struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	ThumbnailURL    string              `json:"thumbnail_url"`
	CategoryID      string              `json:"category_id"`
	InstructorID    string              `json:"instructor_id"`
	Status          models.CourseStatus `json:"status"`
	Duration        string              `json:"duration"`
	InstructorName  string              `json:"instructor_name"`
	CategoryName    string              `json:"category_name"`
	AverageRating   float64             `json:"average_rating"`
	ReviewCount     int                 `json:"review_count"`
	EnrollmentCount int64               `json:"enrollment_count"`
}

type ReviewView struct {
	Rating         int    `json:"rating"`
	Comment        string `json:"comment"`
	ReviewerName   string `json:"reviewer_name"`
	ReviewerAvatar string `json:"reviewer_avatar"`
}

type CourseDetail struct {
	CourseView
	OrderedLessons []models.Lesson `json:"ordered_lessons"`
	Reviews        []ReviewView    `json:"reviews"`
}

// AverageRating is the arithmetic mean of the ratings; the empty set is a
// defined zero case, not an error.
func AverageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}

// SortLessons returns the lessons sorted ascending by order index. The sort
// is stable, so ties keep their fetch order, and the input slice is left
// untouched.
func SortLessons(lessons []models.Lesson) []models.Lesson {
	sorted := make([]models.Lesson, len(lessons))
	copy(sorted, lessons)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderIndex < sorted[j].OrderIndex
	})
	return sorted
}

// BuildCourseView computes the derived fields for one course from its joined
// rows plus a separately counted enrollment total.
func BuildCourseView(course models.Course, enrollmentCount int64) CourseView {
	instructorName := UnknownName
	if course.Instructor != nil && course.Instructor.FullName != "" {
		instructorName = course.Instructor.FullName
	}

	categoryName := UnknownName
	if course.Category != nil && course.Category.Name != "" {
		categoryName = course.Category.Name
	}

	return CourseView{
		ID:              course.ID.String(),
		Title:           course.Title,
		Description:     course.Description,
		ThumbnailURL:    course.ThumbnailURL,
		CategoryID:      course.CategoryID.String(),
		InstructorID:    course.InstructorID.String(),
		Status:          course.Status,
		Duration:        course.Duration,
		InstructorName:  instructorName,
		CategoryName:    categoryName,
		AverageRating:   AverageRating(course.Reviews),
		ReviewCount:     len(course.Reviews),
		EnrollmentCount: enrollmentCount,
	}
}

// BuildReviewViews joins reviews with reviewer display data. No particular
// order is guaranteed.
func BuildReviewViews(reviews []models.Review) []ReviewView {
	views := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		view := ReviewView{
			Rating:       r.Rating,
			Comment:      r.Comment,
			ReviewerName: UnknownName,
		}
		if r.Reviewer != nil {
			if r.Reviewer.FullName != "" {
				view.ReviewerName = r.Reviewer.FullName
			}
			view.ReviewerAvatar = r.Reviewer.AvatarURL
		}
		views = append(views, view)
	}
	return views
}
