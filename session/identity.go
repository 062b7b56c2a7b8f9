package session

import (
	"context"
	"errors"
	"sync"

	"learnhub/config"
	"learnhub/errs"
	"learnhub/models"
	"learnhub/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthEvent carries the viewer identity after a sign-in, sign-out or token
// refresh. A nil Viewer means signed out.
type AuthEvent struct {
	Viewer *models.Viewer
}

// IdentityService is the external identity collaborator. OnAuthChange
// delivers the current auth state to a new listener immediately, then every
// subsequent change in emission order.
type IdentityService interface {
	OnAuthChange(listener func(AuthEvent)) (unsubscribe func())
	SignOut(ctx context.Context) error
	GetProfile(ctx context.Context, viewerID uuid.UUID) (*models.Profile, error)
}

// Authenticator is the production identity service: credentials and profiles
// live in the database, identity is carried in signed tokens.
type Authenticator struct {
	DB  *gorm.DB
	Cfg *config.Config

	mu        sync.Mutex
	current   *models.Viewer
	listeners []authListener
	nextID    int
}

type authListener struct {
	id int
	fn func(AuthEvent)
}

func NewAuthenticator(db *gorm.DB, cfg *config.Config) *Authenticator {
	return &Authenticator{DB: db, Cfg: cfg}
}

func (a *Authenticator) OnAuthChange(listener func(AuthEvent)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners = append(a.listeners, authListener{id: id, fn: listener})
	current := a.current
	a.mu.Unlock()

	listener(AuthEvent{Viewer: current})

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		for i, l := range a.listeners {
			if l.id == id {
				a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
				return
			}
		}
	}
}

func (a *Authenticator) emit(ev AuthEvent) {
	a.mu.Lock()
	a.current = ev.Viewer
	listeners := make([]authListener, len(a.listeners))
	copy(listeners, a.listeners)
	a.mu.Unlock()

	for _, l := range listeners {
		l.fn(ev)
	}
}

// SignIn verifies credentials, issues a token and notifies listeners.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (string, models.Viewer, error) {
	var profile models.Profile
	if err := a.DB.WithContext(ctx).Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", models.Viewer{}, errs.ErrUnauthorized
		}
		return "", models.Viewer{}, errs.Transient("sign in", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return "", models.Viewer{}, errs.ErrUnauthorized
	}

	viewer := models.Viewer{ID: profile.ID, Email: profile.Email}
	token, err := utils.GenerateJWTToken(viewer, a.Cfg)
	if err != nil {
		return "", models.Viewer{}, err
	}

	a.emit(AuthEvent{Viewer: &viewer})
	return token, viewer, nil
}

func (a *Authenticator) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errs.Transient("sign out", err)
	}
	a.emit(AuthEvent{Viewer: nil})
	return nil
}

// GetProfile returns nil without error when no profile row exists yet.
func (a *Authenticator) GetProfile(ctx context.Context, viewerID uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := a.DB.WithContext(ctx).First(&profile, "id = ?", viewerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errs.Transient("get profile", err)
	}
	return &profile, nil
}
