package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/coachdesk/playlog/internal/models"
)

var ErrEmailTaken = errors.New("email already in use")

type Repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

// CreateUser registers a new account. The first user of an empty database
// becomes admin.
func (r *Repository) CreateUser(email, passwordHash string) (*models.User, error) {
	var user models.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Count(&n).Error; err != nil {
			return err
		}
		user = models.User{Email: email, PasswordHash: passwordHash, IsAdmin: n == 0}
		err := tx.Create(&user).Error
		if err != nil && strings.Contains(strings.ToLower(err.Error()), "unique") {
			return ErrEmailTaken
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ProvisionProfile creates the user's coach profile if it does not exist yet.
// Called explicitly after registration rather than hooked into user creation.
func (r *Repository) ProvisionProfile(userID int64) error {
	var n int64
	if err := r.db.Model(&models.Profile{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return r.db.Create(&models.Profile{UserID: userID, Role: models.RoleCoach}).Error
}

func (r *Repository) GetUserByEmail(email string) (*models.User, error) {
	var u models.User
	if err := r.db.Where("email = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// NewToken returns a cryptographically secure random token (hex-64).
func NewToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func (r *Repository) CreateSession(userID int64, ttl time.Duration) (*models.Session, error) {
	tok, err := NewToken()
	if err != nil {
		return nil, err
	}
	s := models.Session{Token: tok, UserID: userID, ExpiresAt: time.Now().Add(ttl).UTC()}
	if err := r.db.Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) DeleteSession(token string) error {
	return r.db.Delete(&models.Session{}, "token = ?", token).Error
}

// GetUserBySession resolves a live session token to its user, pruning expired
// sessions along the way.
func (r *Repository) GetUserBySession(token string) (*models.User, error) {
	now := time.Now().UTC()
	_ = r.db.Where("expires_at < ?", now).Delete(&models.Session{}).Error
	var s models.Session
	if err := r.db.Where("token = ? AND expires_at > ?", token, now).First(&s).Error; err != nil {
		return nil, err
	}
	var u models.User
	if err := r.db.First(&u, s.UserID).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
