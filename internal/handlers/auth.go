package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/budgetboard-dev/budgetboard/db"
	"github.com/budgetboard-dev/budgetboard/internal/auth"
	"github.com/budgetboard-dev/budgetboard/internal/models"
	"github.com/budgetboard-dev/budgetboard/internal/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name *string `json:"name"`
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponse(user *models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
	}
}

// Initials derives a two-letter avatar from up to two words of the name.
func Initials(name string) string {
	var initials string

	for i, word := range strings.Fields(name) {
		if i == 2 {
			break
		}
		initials += string([]rune(word)[0])
	}

	return strings.ToUpper(initials)
}

func Register(ctx *gin.Context) {
	var req RegisterRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Name, email and password are required, password at least 6 characters.", err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User

	err := db.DB.Where("email = ?", req.Email).First(&existing).Error

	if err == nil {
		respondError(ctx, http.StatusConflict, "An account with this email already exists.", nil)
		return
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondDBError(ctx, err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)

	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(passwordHash),
		Avatar:       Initials(req.Name),
	}

	if err := db.DB.Create(&user).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

func Login(ctx *gin.Context) {
	var req LoginRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Email and password are required.", err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User

	err := db.DB.Where("email = ?", req.Email).First(&user).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same message as a password mismatch so accounts cannot be enumerated.
			respondError(ctx, http.StatusUnauthorized, "Invalid email or password.", nil)
			return
		}
		respondDBError(ctx, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(ctx, http.StatusUnauthorized, "Invalid email or password.", nil)
		return
	}

	token, err := auth.GenerateJWT(user.ID, user.Email)

	if err != nil {
		respondError(ctx, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  userResponse(&user),
	})
}

func Me(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, userResponse(&user))
}

func UpdateProfile(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		respondError(ctx, http.StatusUnauthorized, "User not authenticated", err)
		return
	}

	var req UpdateProfileRequest

	if err := ctx.BindJSON(&req); err != nil {
		respondError(ctx, http.StatusBadRequest, "Invalid request", err)
		return
	}

	// Omitted fields are left unchanged.
	updates := make(map[string]interface{})

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name := strings.TrimSpace(*req.Name)
		updates["name"] = name
		updates["avatar"] = Initials(name)
	}

	var user models.User

	if err := db.DB.First(&user, currentUser.ID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			respondDBError(ctx, err)
			return
		}
	}

	if err := db.DB.First(&user, user.ID).Error; err != nil {
		respondDBError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, userResponse(&user))
}
