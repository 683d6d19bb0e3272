package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/coachdesk/playlog/internal/models"
)

const CookieName = "session_token"

const ctxUserKey = "auth.user"

// Options control session lifetime and cookie hardening.
type Options struct {
	SessionTTL   time.Duration
	SecureCookie bool
}

func (o Options) ttl() time.Duration {
	if o.SessionTTL > 0 {
		return o.SessionTTL
	}
	return 30 * 24 * time.Hour
}

func RegisterRoutes(r *gin.Engine, repo *Repository, opts Options) {
	api := r.Group("/api/auth")

	api.POST("/register", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || !strings.Contains(req.Email, "@") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email"})
			return
		}
		if len(req.Password) < 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "password too short (min 12)"})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "hash failed"})
			return
		}
		u, err := repo.CreateUser(req.Email, string(hash))
		if err == ErrEmailTaken {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := repo.ProvisionProfile(u.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": u.ID, "email": u.Email, "is_admin": u.IsAdmin})
	})

	api.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing email or password"})
			return
		}
		u, err := repo.GetUserByEmail(req.Email)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		s, err := repo.CreateSession(u.ID, opts.ttl())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "session failed"})
			return
		}
		maxAge := int(time.Until(s.ExpiresAt).Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, s.Token, maxAge, "/", "", opts.SecureCookie, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api.POST("/logout", func(c *gin.Context) {
		if tok, err := c.Cookie(CookieName); err == nil && tok != "" {
			_ = repo.DeleteSession(tok)
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, "", -1, "/", "", opts.SecureCookie, true)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	api.GET("/me", RequireAuth(repo), func(c *gin.Context) {
		u, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"id": u.ID, "email": u.Email, "is_admin": u.IsAdmin})
	})
}

// RequireAuth resolves the session cookie and stores the user in the request
// context; unauthenticated requests are rejected.
func RequireAuth(repo *Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(CookieName)
		if err != nil || tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		u, err := repo.GetUserBySession(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(ctxUserKey, u)
		c.Next()
	}
}

// RequireStaff rejects non-admin users. Must run after RequireAuth.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok || !u.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff only"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed in the context by
// RequireAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok
}
