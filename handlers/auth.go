package handlers

import (
	"database/sql"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"yumigo/database"
	"yumigo/middleware"
	"yumigo/models"
	"yumigo/utils"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

func Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var exists bool
	err := database.DB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM users WHERE username = ? OR email = ?)",
		req.Username, req.Email,
	).Scan(&exists)
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}
	if exists {
		utils.BadRequest(c, "username or email already taken")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.InternalError(c, "failed to hash password")
		return
	}

	// First authentication creates the profile with fallback defaults:
	// empty bio, no avatar, empty following set, zeroed counters.
	id := utils.GenerateUUID()
	now := time.Now()

	_, err = database.DB.Exec(`
		INSERT INTO users (id, username, email, password, following_ids, created_at, updated_at)
		VALUES (?, ?, ?, ?, '[]', ?, ?)
	`, id, req.Username, req.Email, string(hashedPassword), now, now)
	if err != nil {
		utils.InternalError(c, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(id)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	utils.Success(c, AuthResponse{
		Token: token,
		User: models.UserResponse{
			ID:        id,
			Username:  req.Username,
			CreatedAt: now,
		},
	})
}

func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	var id, password string
	err := database.DB.QueryRow(
		"SELECT id, password FROM users WHERE email = ? OR username = ?",
		req.Email, req.Email,
	).Scan(&id, &password)

	if err == sql.ErrNoRows {
		utils.Unauthorized(c, "invalid email or password")
		return
	}
	if err != nil {
		utils.InternalError(c, "database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(password), []byte(req.Password)); err != nil {
		utils.Unauthorized(c, "invalid email or password")
		return
	}

	user, err := Gateway.GetProfile(c.Request.Context(), id)
	if err != nil || user == nil {
		utils.InternalError(c, "database error")
		return
	}

	token, err := utils.GenerateToken(id)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	utils.Success(c, AuthResponse{
		Token: token,
		User:  *user.ToResponse(),
	})
}

func Logout(c *gin.Context) {
	utils.Success(c, nil)
}

func RefreshToken(c *gin.Context) {
	userID := middleware.GetUserID(c)

	token, err := utils.GenerateToken(userID)
	if err != nil {
		utils.InternalError(c, "failed to generate token")
		return
	}

	utils.Success(c, gin.H{"token": token})
}

// DeleteAccount is a stub: profiles are never hard-deleted.
func DeleteAccount(c *gin.Context) {
	c.JSON(501, gin.H{"error": "account deletion is not available yet"})
}
