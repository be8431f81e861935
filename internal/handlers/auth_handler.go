package handlers

import (
	"net/http"

	"courier_api/internal/models"
	"courier_api/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// SessionCookie carries the session token.
	SessionCookie = "token"
	// contextUserKey holds the authenticated *models.User.
	contextUserKey = "user"
)

type AuthHandler struct {
	authService services.AuthService
	secure      bool
	maxAge      int
	logger      *zap.Logger
}

// NewAuthHandler builds the login endpoints. secure switches the session cookie
// to Secure with SameSite=None for cross-site production deployments; maxAge is
// the cookie lifetime in seconds.
func NewAuthHandler(authService services.AuthService, secure bool, maxAge int, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		secure:      secure,
		maxAge:      maxAge,
		logger:      logger,
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidRequest})
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, result.Token, h.maxAge)
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

func (h *AuthHandler) VerifyToken(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Not authenticated"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Token is valid",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(SessionCookie)
	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.logger.Warn("failed to delete session", zap.Error(err))
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// RequireAuth rejects requests without a valid session cookie and stores the
// session's user in the context.
func (h *AuthHandler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)

		user, err := h.authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, h.logger, err)
			c.Abort()
			return
		}

		c.Set(contextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user stored by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(contextUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	if h.secure {
		c.SetSameSite(http.SameSiteNoneMode)
	} else {
		c.SetSameSite(http.SameSiteLaxMode)
	}
	c.SetCookie(SessionCookie, value, maxAge, "/", "", h.secure, true)
}
