package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adarsh-MG101/VerifyCert2/internal/api/middleware"
	"github.com/Adarsh-MG101/VerifyCert2/internal/services"
)

const authCookieMaxAge = 24 * 60 * 60

// AuthHandler exposes registration, login and session endpoints.
type AuthHandler struct {
	auth     *services.AuthService
	activity *services.ActivityService
}

func NewAuthHandler(auth *services.AuthService, activity *services.ActivityService) *AuthHandler {
	return &AuthHandler{auth: auth, activity: activity}
}

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Organization string `json:"organization" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email, password and organization are required"})
		return
	}

	user, err := h.auth.Register(req.Name, req.Email, req.Password, req.Organization)
	if err != nil {
		if services.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("registration failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		if services.IsValidation(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		middleware.GetRequestLogger(c).WithError(err).Error("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to log in"})
		return
	}

	if err := h.activity.RecordLogin(user.ID, c.ClientIP(), c.Request.UserAgent()); err != nil {
		middleware.GetRequestLogger(c).WithError(err).Warn("failed to record login activity")
	}

	c.SetCookie(middleware.AuthCookieName, token, authCookieMaxAge, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if userID := c.GetUint(middleware.ContextUserIDKey); userID != 0 {
		if err := h.activity.RecordLogout(userID, c.ClientIP(), c.Request.UserAgent()); err != nil {
			middleware.GetRequestLogger(c).WithError(err).Warn("failed to record logout activity")
		}
	}
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.GetUserByID(c.GetUint(middleware.ContextUserIDKey))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
