package middleware

import (
	"learnhub/config"
	"learnhub/guard"
	"learnhub/models"
	"learnhub/session"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const (
	viewerKey  = "viewer"
	profileKey = "profile"
)

// snapshotFromRequest resolves the bearer token into a session snapshot. A
// request-scoped snapshot is never loading: the token either resolves or the
// request is anonymous.
func snapshotFromRequest(c *fiber.Ctx, db *gorm.DB, cfg *config.Config) session.Snapshot {
	viewer, err := utils.ExtractViewerFromToken(c, cfg)
	if err != nil {
		return session.Snapshot{}
	}

	var profile models.Profile
	if err := db.First(&profile, "id = ?", viewer.ID).Error; err != nil {
		return session.Snapshot{Viewer: &viewer}
	}
	return session.Snapshot{Viewer: &viewer, Profile: &profile}
}

// RequireRole gates a route on the guard decision. Redirect decisions answer
// with an HTTP redirect to the path the guard chose, so unauthorized viewers
// land on the login page and role mismatches land on their own dashboard.
func RequireRole(db *gorm.DB, cfg *config.Config, required models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := snapshotFromRequest(c, db, cfg)

		d := guard.Evaluate(snap, required)
		if d.Action == guard.Redirect {
			return c.Redirect(d.Path, fiber.StatusSeeOther)
		}

		c.Locals(viewerKey, *snap.Viewer)
		if snap.Profile != nil {
			c.Locals(profileKey, *snap.Profile)
		}
		return c.Next()
	}
}

// RequireAuth admits any authenticated viewer.
func RequireAuth(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return RequireRole(db, cfg, "")
}

// Viewer returns the identity placed in the request context by RequireRole.
func Viewer(c *fiber.Ctx) (models.Viewer, bool) {
	viewer, ok := c.Locals(viewerKey).(models.Viewer)
	return viewer, ok
}

// Profile returns the profile placed in the request context, when hydrated.
func Profile(c *fiber.Ctx) (models.Profile, bool) {
	profile, ok := c.Locals(profileKey).(models.Profile)
	return profile, ok
}
