package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salonbook-backend/models"
	"salonbook-backend/repository"
	"salonbook-backend/utils"
)

type RegisterInput struct {
	Email    string      `json:"email" binding:"required,email"`
	Name     string      `json:"name"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthOptions struct {
	BcryptCost        int
	AllowRegistration bool
	SecureCookie      bool
}

type AuthController struct {
	users  *repository.UserRepository
	tokens *utils.TokenManager
	opts   AuthOptions
	now    func() time.Time
}

func NewAuthController(users *repository.UserRepository, tokens *utils.TokenManager, opts AuthOptions) *AuthController {
	return &AuthController{users: users, tokens: tokens, opts: opts, now: time.Now}
}

// controllers/auth.go
func (ac *AuthController) Register(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	count, err := ac.users.Count(ctx)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Database error", err))
		return
	}
	if count > 0 && !ac.opts.AllowRegistration {
		utils.RespondWithAppError(c, utils.Unauthorized("Registration is closed"))
		return
	}

	// The first account always owns the salon.
	role := input.Role
	if count == 0 {
		role = models.RoleOwner
	} else if role == "" {
		role = models.RoleStaff
	}
	if !role.Valid() {
		utils.RespondWithAppError(c, utils.InvalidInput("Invalid role"))
		return
	}

	hash, err := utils.HashPassword(input.Password, ac.opts.BcryptCost)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to hash password", err))
		return
	}

	user := models.User{
		Email:        utils.NormalizeEmail(input.Email),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hash,
		Role:         role,
	}
	if err := ac.users.Create(ctx, &user); err != nil {
		utils.RespondWithAppError(c, storeError(err, "", "Email already registered", "Failed to create user"))
		return
	}

	token, ok := ac.issueToken(c, &user)
	if !ok {
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   token,
		"user":    user,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	user, err := ac.users.GetByEmail(ctx, utils.NormalizeEmail(input.Email))
	if errors.Is(err, repository.ErrNotFound) {
		utils.RespondWithAppError(c, utils.Unauthorized("Invalid credentials"))
		return
	}
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Database error", err))
		return
	}

	if !utils.CheckPasswordHash(input.Password, user.PasswordHash) {
		utils.RespondWithAppError(c, utils.Unauthorized("Invalid credentials"))
		return
	}

	token, ok := ac.issueToken(c, user)
	if !ok {
		return
	}

	now := ac.now()
	if err := ac.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to update last login", err))
		return
	}
	user.LastLogin = &now

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := ac.users.Get(c.Request.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "User not found", "", "Database error"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// issueToken signs a token for user and sets it as the auth cookie.
func (ac *AuthController) issueToken(c *gin.Context, user *models.User) (string, bool) {
	token, _, err := ac.tokens.Generate(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to generate token", err))
		return "", false
	}

	c.SetCookie(
		utils.TokenCookie,
		token,
		int(ac.tokens.Expiry().Seconds()),
		"/",
		"",
		ac.opts.SecureCookie,
		true,
	)
	return token, true
}
