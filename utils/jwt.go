package utils

import (
	"time"

	"learnhub/config"
	"learnhub/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

func GenerateJWTToken(viewer models.Viewer, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"sub":   viewer.ID.String(),
		"email": viewer.Email,
		"exp":   time.Now().Add(time.Hour * 72).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// ParseViewerToken validates a bearer token and returns the viewer identity
// embedded in it. The profile is not part of the token and is loaded separately.
func ParseViewerToken(tokenString string, cfg *config.Config) (models.Viewer, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil {
		return models.Viewer{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Viewer{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return models.Viewer{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid subject in token")
	}

	id, err := uuid.Parse(sub)
	if err != nil {
		return models.Viewer{}, fiber.NewError(fiber.StatusUnauthorized, "Invalid viewer ID in token")
	}

	email, _ := claims["email"].(string)
	return models.Viewer{ID: id, Email: email}, nil
}

// ExtractViewerFromToken reads the Authorization header of a request.
func ExtractViewerFromToken(c *fiber.Ctx, cfg *config.Config) (models.Viewer, error) {
	tokenString := c.Get("Authorization")
	if tokenString == "" {
		return models.Viewer{}, fiber.NewError(fiber.StatusUnauthorized, "Missing authorization token")
	}
	return ParseViewerToken(tokenString, cfg)
}
