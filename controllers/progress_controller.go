package controllers

import (
	"errors"

	"learnhub/catalog"
	"learnhub/config"
	"learnhub/errs"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/progress"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProgressController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Catalog  *catalog.Service
	Progress *progress.Service
}

func NewProgressController(db *gorm.DB, cfg *config.Config, cat *catalog.Service, prog *progress.Service) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Catalog: cat, Progress: prog}
}

func (pc *ProgressController) Enroll(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	if err := pc.Progress.Enroll(c.UserContext(), viewer.ID, courseID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not enroll")
	}

	return c.JSON(fiber.Map{"message": "Enrolled"})
}

func (pc *ProgressController) GetCourseProgress(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	summary, err := pc.Progress.CourseProgress(c.UserContext(), viewer.ID, courseID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(summary)
}

func (pc *ProgressController) CompleteLesson(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	if err := pc.Progress.MarkLessonComplete(c.UserContext(), viewer.ID, lessonID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not save progress")
	}

	return c.JSON(fiber.Map{"message": "Lesson completed"})
}

// GetLesson serves lesson metadata. Non-preview lessons require an
// enrollment; preview lessons are open to any authenticated viewer.
func (pc *ProgressController) GetLesson(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	lessonID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid lesson ID")
	}

	var lesson models.Lesson
	if err := pc.DB.First(&lesson, "id = ?", lessonID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Lesson not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if !lesson.IsPreview {
		enrolled, err := pc.Progress.IsEnrolled(c.UserContext(), viewer.ID, lesson.CourseID)
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		if !enrolled {
			return utils.Forbidden(c, "Enrollment required")
		}
	}

	return c.JSON(lesson)
}

// MyCourses lists the viewer's enrollments joined with per-course progress.
func (pc *ProgressController) MyCourses(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	ids, err := pc.Progress.EnrolledCourseIDs(c.UserContext(), viewer.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	views, err := pc.Catalog.ListByIDs(c.UserContext(), ids)
	if err != nil {
		if errs.IsTransient(err) {
			return c.JSON(fiber.Map{"courses": []fiber.Map{}, "fetch_error": true})
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(views))
	for _, view := range views {
		courseID, err := uuid.Parse(view.ID)
		if err != nil {
			continue
		}
		summary, err := pc.Progress.CourseProgress(c.UserContext(), viewer.ID, courseID)
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		result = append(result, fiber.Map{
			"course":   view,
			"progress": summary,
		})
	}

	return c.JSON(fiber.Map{"courses": result, "fetch_error": false})
}
