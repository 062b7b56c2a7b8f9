package controllers

import (
	"errors"

	"learnhub/catalog"
	"learnhub/config"
	"learnhub/errs"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CoursesController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Catalog *catalog.Service
}

func NewCoursesController(db *gorm.DB, cfg *config.Config, cat *catalog.Service) *CoursesController {
	return &CoursesController{DB: db, Cfg: cfg, Catalog: cat}
}

// ListCourses returns the published catalog. A transient fetch failure is an
// empty payload with an error flag, so the client can offer a retry.
func (cc *CoursesController) ListCourses(c *fiber.Ctx) error {
	views, err := cc.Catalog.ListPublished(c.UserContext())
	if err != nil {
		if errs.IsTransient(err) {
			return c.JSON(fiber.Map{"courses": []catalog.CourseView{}, "fetch_error": true})
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"courses": views, "fetch_error": false})
}

func (cc *CoursesController) GetCourse(c *fiber.Ctx) error {
	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	detail, err := cc.Catalog.GetCourseDetail(c.UserContext(), courseID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		if errs.IsTransient(err) {
			return c.JSON(fiber.Map{"course": nil, "fetch_error": true})
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"course": detail, "fetch_error": false})
}

func (cc *CoursesController) ListCategories(c *fiber.Ctx) error {
	categories, err := cc.Catalog.ListCategories(c.UserContext())
	if err != nil {
		if errs.IsTransient(err) {
			return c.JSON(fiber.Map{"categories": []models.Category{}, "fetch_error": true})
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"categories": categories, "fetch_error": false})
}

// InstructorCourses lists the signed-in instructor's own courses, drafts
// included.
func (cc *CoursesController) InstructorCourses(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	views, err := cc.Catalog.ListByInstructor(c.UserContext(), viewer.ID)
	if err != nil {
		if errs.IsTransient(err) {
			return c.JSON(fiber.Map{"courses": []catalog.CourseView{}, "fetch_error": true})
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"courses": views, "fetch_error": false})
}

// AdminCourses lists every course in any status.
func (cc *CoursesController) AdminCourses(c *fiber.Ctx) error {
	views, err := cc.Catalog.ListAll(c.UserContext())
	if err != nil {
		if errs.IsTransient(err) {
			return c.JSON(fiber.Map{"courses": []catalog.CourseView{}, "fetch_error": true})
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"courses": views, "fetch_error": false})
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// AddReview upserts the viewer's review for a course; one review per
// (viewer, course) pair.
func (cc *CoursesController) AddReview(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid course ID")
	}

	var input ReviewInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return utils.BadRequest(c, "Rating must be between 1 and 5")
	}

	var course models.Course
	if err := cc.DB.Where("id = ? AND status = ?", courseID, models.StatusPublished).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Course not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	review := models.Review{
		UserID:   viewer.ID,
		CourseID: courseID,
		Rating:   input.Rating,
		Comment:  input.Comment,
	}
	err = cc.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment"}),
	}).Create(&review).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not save review")
	}

	return c.JSON(fiber.Map{"message": "Review saved", "review": review})
}
