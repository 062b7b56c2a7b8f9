package catalog_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"learnhub/catalog"
	"learnhub/errs"
	"learnhub/models"
	"learnhub/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	return db
}

type fixture struct {
	instructor models.Profile
	category   models.Category
	published  models.Course
	draft      models.Course
}

func seedCatalog(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	instructor := models.Profile{
		Email:        "ada@example.com",
		PasswordHash: "x",
		FullName:     "Ada Lovelace",
		Role:         models.RoleInstructor,
	}
	require.NoError(t, db.Create(&instructor).Error)

	category := models.Category{Name: "Programming", Slug: "programming"}
	require.NoError(t, db.Create(&category).Error)

	published := models.Course{
		Title:        "Go from scratch",
		CategoryID:   category.ID,
		InstructorID: instructor.ID,
		Status:       models.StatusPublished,
	}
	require.NoError(t, db.Create(&published).Error)

	draft := models.Course{
		Title:        "Unfinished draft",
		CategoryID:   category.ID,
		InstructorID: instructor.ID,
		Status:       models.StatusDraft,
	}
	require.NoError(t, db.Create(&draft).Error)

	lessons := []models.Lesson{
		{CourseID: published.ID, Title: "Closing thoughts", OrderIndex: 3},
		{CourseID: published.ID, Title: "Hello world", OrderIndex: 1, IsPreview: true},
		{CourseID: published.ID, Title: "Types", OrderIndex: 2},
	}
	for i := range lessons {
		require.NoError(t, db.Create(&lessons[i]).Error)
	}

	for i, rating := range []int{5, 4, 3} {
		reviewer := models.Profile{
			Email:        fmt.Sprintf("reviewer%d@example.com", i),
			PasswordHash: "x",
			FullName:     fmt.Sprintf("Reviewer %d", i),
			Role:         models.RoleStudent,
		}
		require.NoError(t, db.Create(&reviewer).Error)
		require.NoError(t, db.Create(&models.Review{
			UserID:   reviewer.ID,
			CourseID: published.ID,
			Rating:   rating,
		}).Error)
	}

	return fixture{instructor: instructor, category: category, published: published, draft: draft}
}

func TestListPublishedFiltersAndAggregates(t *testing.T) {
	db := openTestDB(t)
	fix := seedCatalog(t, db)
	service := catalog.NewService(db)

	views, err := service.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, fix.published.ID.String(), view.ID)
	assert.Equal(t, "Ada Lovelace", view.InstructorName)
	assert.Equal(t, "Programming", view.CategoryName)
	assert.InDelta(t, 4.0, view.AverageRating, 1e-9)
	assert.Equal(t, 3, view.ReviewCount)
	assert.Equal(t, int64(0), view.EnrollmentCount)
}

func TestGetCourseDetailOrdersLessons(t *testing.T) {
	db := openTestDB(t)
	fix := seedCatalog(t, db)
	service := catalog.NewService(db)

	detail, err := service.GetCourseDetail(context.Background(), fix.published.ID)
	require.NoError(t, err)

	require.Len(t, detail.OrderedLessons, 3)
	assert.Equal(t, "Hello world", detail.OrderedLessons[0].Title)
	assert.Equal(t, "Types", detail.OrderedLessons[1].Title)
	assert.Equal(t, "Closing thoughts", detail.OrderedLessons[2].Title)

	require.Len(t, detail.Reviews, 3)
	for _, review := range detail.Reviews {
		assert.NotEqual(t, catalog.UnknownName, review.ReviewerName)
	}
}

func TestGetCourseDetailHidesUnpublished(t *testing.T) {
	db := openTestDB(t)
	fix := seedCatalog(t, db)
	service := catalog.NewService(db)

	_, err := service.GetCourseDetail(context.Background(), fix.draft.ID)
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = service.GetCourseDetail(context.Background(), uuid.New())
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGetCourseDetailCountsEnrollments(t *testing.T) {
	db := openTestDB(t)
	fix := seedCatalog(t, db)
	service := catalog.NewService(db)

	student := models.Profile{Email: "s@example.com", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, db.Create(&student).Error)
	require.NoError(t, db.Create(&models.Enrollment{UserID: student.ID, CourseID: fix.published.ID}).Error)

	detail, err := service.GetCourseDetail(context.Background(), fix.published.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), detail.EnrollmentCount)
}

func TestListByInstructorIncludesDrafts(t *testing.T) {
	db := openTestDB(t)
	fix := seedCatalog(t, db)
	service := catalog.NewService(db)

	views, err := service.ListByInstructor(context.Background(), fix.instructor.ID)
	require.NoError(t, err)
	assert.Len(t, views, 2)

	views, err = service.ListByInstructor(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestListPublishedDegradesDanglingJoins(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&models.Course{
		Title:        "Orphan course",
		CategoryID:   uuid.New(),
		InstructorID: uuid.New(),
		Status:       models.StatusPublished,
	}).Error)

	service := catalog.NewService(db)
	views, err := service.ListPublished(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, catalog.UnknownName, views[0].InstructorName)
	assert.Equal(t, catalog.UnknownName, views[0].CategoryName)
}
