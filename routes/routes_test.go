package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"learnhub/config"
	"learnhub/models"
	"learnhub/routes"
	"learnhub/session"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))

	cfg := &config.Config{JWTSecret: "testsecret", ServerPort: "8080"}
	logger := utils.InitLogger()

	auth := session.NewAuthenticator(db, cfg)
	store := session.NewStore(auth, logger)
	store.Start()
	t.Cleanup(store.Close)

	app := fiber.New()
	routes.SetupRoutes(app, db, cfg, auth, store)

	return &testEnv{app: app, db: db, cfg: cfg}
}

func (e *testEnv) request(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func (e *testEnv) register(t *testing.T, email string, role models.Role) string {
	t.Helper()
	resp := e.request(t, "POST", "/api/auth/register", "", map[string]interface{}{
		"email":     email,
		"password":  "password123",
		"full_name": "Test " + string(role),
		"role":      string(role),
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode(t, resp)
	token, _ := result["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) seedPublishedCourse(t *testing.T, lessonCount int) (models.Course, []models.Lesson) {
	t.Helper()

	instructor := models.Profile{
		Email:        fmt.Sprintf("instructor-%s@example.com", strings.ReplaceAll(t.Name(), "/", "_")),
		PasswordHash: "x",
		FullName:     "Ada Lovelace",
		Role:         models.RoleInstructor,
	}
	require.NoError(t, e.db.Create(&instructor).Error)

	category := models.Category{Name: "Programming", Slug: "programming-" + strings.ReplaceAll(t.Name(), "/", "_")}
	require.NoError(t, e.db.Create(&category).Error)

	course := models.Course{
		Title:        "Go from scratch",
		CategoryID:   category.ID,
		InstructorID: instructor.ID,
		Status:       models.StatusPublished,
	}
	require.NoError(t, e.db.Create(&course).Error)

	lessons := make([]models.Lesson, 0, lessonCount)
	for i := 0; i < lessonCount; i++ {
		lesson := models.Lesson{
			CourseID:   course.ID,
			Title:      fmt.Sprintf("Lesson %d", i+1),
			OrderIndex: i + 1,
			IsPreview:  i == 0,
		}
		require.NoError(t, e.db.Create(&lesson).Error)
		lessons = append(lessons, lesson)
	}
	return course, lessons
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	env.register(t, "student@example.com", models.RoleStudent)

	resp := env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "student@example.com",
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode(t, resp)
	assert.NotEmpty(t, result["token"])

	resp = env.request(t, "POST", "/api/auth/login", "", map[string]string{
		"email":    "student@example.com",
		"password": "wrong",
	})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAnonymousIsRedirectedToLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, "GET", "/api/profile", "", nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestRoleMismatchRedirectsToOwnDashboard(t *testing.T) {
	env := newTestEnv(t)
	studentToken := env.register(t, "student@example.com", models.RoleStudent)

	resp := env.request(t, "GET", "/api/admin/courses", studentToken, nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/student-dashboard", resp.Header.Get("Location"))

	resp = env.request(t, "GET", "/api/instructor/courses", studentToken, nil)
	assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/student-dashboard", resp.Header.Get("Location"))
}

func TestCatalogListsPublishedCourses(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.seedPublishedCourse(t, 2)

	resp := env.request(t, "GET", "/api/courses", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode(t, resp)
	assert.Equal(t, false, result["fetch_error"])

	courses, ok := result["courses"].([]interface{})
	require.True(t, ok)
	require.Len(t, courses, 1)

	first := courses[0].(map[string]interface{})
	assert.Equal(t, course.ID.String(), first["id"])
	assert.Equal(t, "Ada Lovelace", first["instructor_name"])
	assert.Equal(t, float64(0), first["enrollment_count"])
}

func TestCourseDetailReturnsOrderedLessons(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.seedPublishedCourse(t, 3)

	resp := env.request(t, "GET", "/api/courses/"+course.ID.String(), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode(t, resp)

	detail := result["course"].(map[string]interface{})
	lessons := detail["ordered_lessons"].([]interface{})
	require.Len(t, lessons, 3)
	for i, raw := range lessons {
		lesson := raw.(map[string]interface{})
		assert.Equal(t, float64(i+1), lesson["order_index"])
	}
}

func TestEnrollAndTrackProgress(t *testing.T) {
	env := newTestEnv(t)
	course, lessons := env.seedPublishedCourse(t, 2)
	token := env.register(t, "student@example.com", models.RoleStudent)

	// Double enroll stays a single enrollment.
	for i := 0; i < 2; i++ {
		resp := env.request(t, "POST", "/api/courses/"+course.ID.String()+"/enroll", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	var enrollments int64
	require.NoError(t, env.db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollments).Error)
	assert.Equal(t, int64(1), enrollments)

	// Complete the same lesson twice; progress still counts it once.
	for i := 0; i < 2; i++ {
		resp := env.request(t, "POST", "/api/lessons/"+lessons[0].ID.String()+"/complete", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := env.request(t, "GET", "/api/courses/"+course.ID.String()+"/progress", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	summary := decode(t, resp)
	assert.Equal(t, float64(1), summary["completed"])
	assert.Equal(t, float64(2), summary["total"])
	assert.Equal(t, float64(50), summary["percent"])

	resp = env.request(t, "GET", "/api/my/courses", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	mine := decode(t, resp)
	courses := mine["courses"].([]interface{})
	require.Len(t, courses, 1)
}

func TestLessonPreviewRule(t *testing.T) {
	env := newTestEnv(t)
	course, lessons := env.seedPublishedCourse(t, 2)
	token := env.register(t, "student@example.com", models.RoleStudent)

	// Preview lesson is open without enrollment.
	resp := env.request(t, "GET", "/api/lessons/"+lessons[0].ID.String(), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// Non-preview lesson needs an enrollment.
	resp = env.request(t, "GET", "/api/lessons/"+lessons[1].ID.String(), token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	env.request(t, "POST", "/api/courses/"+course.ID.String()+"/enroll", token, nil)
	resp = env.request(t, "GET", "/api/lessons/"+lessons[1].ID.String(), token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestReviewUpsertKeepsOnePerViewer(t *testing.T) {
	env := newTestEnv(t)
	course, _ := env.seedPublishedCourse(t, 0)
	token := env.register(t, "student@example.com", models.RoleStudent)

	resp := env.request(t, "POST", "/api/courses/"+course.ID.String()+"/reviews", token, map[string]interface{}{
		"rating":  6,
		"comment": "out of range",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	for _, rating := range []int{5, 3} {
		resp := env.request(t, "POST", "/api/courses/"+course.ID.String()+"/reviews", token, map[string]interface{}{
			"rating":  rating,
			"comment": "updated",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	var reviews []models.Review
	require.NoError(t, env.db.Where("course_id = ?", course.ID).Find(&reviews).Error)
	require.Len(t, reviews, 1)
	assert.Equal(t, 3, reviews[0].Rating)
}

func TestInstructorSeesOwnDrafts(t *testing.T) {
	env := newTestEnv(t)
	token := env.register(t, "teacher@example.com", models.RoleInstructor)

	var profile models.Profile
	require.NoError(t, env.db.Where("email = ?", "teacher@example.com").First(&profile).Error)
	require.NoError(t, env.db.Create(&models.Course{
		Title:        "My draft",
		InstructorID: profile.ID,
		Status:       models.StatusDraft,
	}).Error)

	resp := env.request(t, "GET", "/api/instructor/courses", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode(t, resp)
	courses := result["courses"].([]interface{})
	require.Len(t, courses, 1)

	// The draft stays invisible on the public catalog.
	resp = env.request(t, "GET", "/api/courses", "", nil)
	public := decode(t, resp)
	assert.Empty(t, public["courses"])
}
