package controllers

import (
	"errors"

	"learnhub/config"
	"learnhub/errs"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/session"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Auth  *session.Authenticator
	Store *session.Store
}

func NewAuthController(db *gorm.DB, cfg *config.Config, auth *session.Authenticator, store *session.Store) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Auth: auth, Store: store}
}

type RegisterInput struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if input.Email == "" || input.Password == "" {
		return utils.BadRequest(c, "Email and password are required")
	}

	role := input.Role
	switch role {
	case models.RoleStudent, models.RoleInstructor, models.RoleAdmin:
	case "":
		role = models.RoleStudent
	default:
		return utils.BadRequest(c, "Unknown role")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	profile := models.Profile{
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		FullName:     input.FullName,
		Role:         role,
	}
	if err := ac.DB.Create(&profile).Error; err != nil {
		return utils.InternalServerError(c, "Could not create profile")
	}

	token, viewer, err := ac.Auth.SignIn(c.UserContext(), input.Email, input.Password)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"viewer": fiber.Map{
			"id":    viewer.ID,
			"email": viewer.Email,
		},
	})
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	type LoginInput struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	token, viewer, err := ac.Auth.SignIn(c.UserContext(), input.Email, input.Password)
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not sign in")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"viewer": fiber.Map{
			"id":    viewer.ID,
			"email": viewer.Email,
		},
	})
}

// SignOut is best-effort: the session store forces the anonymous state even
// when the identity service call fails.
func (ac *AuthController) SignOut(c *fiber.Ctx) error {
	if err := ac.Store.SignOut(c.UserContext()); err != nil {
		return utils.InternalServerError(c, "Could not sign out")
	}
	return c.JSON(fiber.Map{"message": "Signed out"})
}

func (ac *AuthController) GetProfile(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var profile models.Profile
	if err := ac.DB.First(&profile, "id = ?", viewer.ID).Error; err != nil {
		return utils.NotFound(c, "Profile not found")
	}

	return c.JSON(profile)
}

type UpdateProfileInput struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

func (ac *AuthController) UpdateProfile(c *fiber.Ctx) error {
	viewer, ok := middleware.Viewer(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var profile models.Profile
	if err := ac.DB.First(&profile, "id = ?", viewer.ID).Error; err != nil {
		return utils.NotFound(c, "Profile not found")
	}

	if input.FullName != "" {
		profile.FullName = input.FullName
	}
	if input.AvatarURL != "" {
		profile.AvatarURL = input.AvatarURL
	}
	if input.Bio != "" {
		profile.Bio = input.Bio
	}

	if err := ac.DB.Save(&profile).Error; err != nil {
		return utils.InternalServerError(c, "Could not update profile")
	}

	return c.JSON(profile)
}
