package routes

import (
	"learnhub/catalog"
	"learnhub/config"
	"learnhub/controllers"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/progress"
	"learnhub/session"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, auth *session.Authenticator, store *session.Store) {
	catalogService := catalog.NewService(db)
	progressService := progress.NewService(db)

	authMiddleware := middleware.RequireAuth(db, cfg)
	instructorMiddleware := middleware.RequireRole(db, cfg, models.RoleInstructor)
	adminMiddleware := middleware.RequireRole(db, cfg, models.RoleAdmin)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg, auth, store)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)
	app.Post("/api/auth/signout", authMiddleware, authController.SignOut)
	app.Get("/api/profile", authMiddleware, authController.GetProfile)
	app.Put("/api/profile", authMiddleware, authController.UpdateProfile)

	// Public catalog routes
	coursesController := controllers.NewCoursesController(db, cfg, catalogService)
	app.Get("/api/categories", coursesController.ListCategories)
	app.Get("/api/courses", coursesController.ListCourses)
	app.Get("/api/courses/:id", coursesController.GetCourse)

	// Enrollment and progress routes
	progressController := controllers.NewProgressController(db, cfg, catalogService, progressService)
	app.Post("/api/courses/:id/enroll", authMiddleware, progressController.Enroll)
	app.Get("/api/courses/:id/progress", authMiddleware, progressController.GetCourseProgress)
	app.Post("/api/courses/:id/reviews", authMiddleware, coursesController.AddReview)
	app.Get("/api/lessons/:id", authMiddleware, progressController.GetLesson)
	app.Post("/api/lessons/:id/complete", authMiddleware, progressController.CompleteLesson)
	app.Get("/api/my/courses", authMiddleware, progressController.MyCourses)

	// Role-gated dashboards
	app.Get("/api/instructor/courses", instructorMiddleware, coursesController.InstructorCourses)
	app.Get("/api/admin/courses", adminMiddleware, coursesController.AdminCourses)
}
