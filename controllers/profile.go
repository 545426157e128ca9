package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"salonbook-backend/utils"
)

type UpdateProfileInput struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (ac *AuthController) UpdateProfile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input UpdateProfileInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	user, err := ac.users.Get(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "User not found", "", "Database error"))
		return
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			utils.RespondWithAppError(c, utils.InvalidInput("Name cannot be empty"))
			return
		}
		user.Name = name
	}
	if input.Email != nil {
		user.Email = utils.NormalizeEmail(*input.Email)
	}

	if err := ac.users.Save(ctx, user); err != nil {
		utils.RespondWithAppError(c, storeError(err, "User not found", "Email already registered", "Failed to update profile"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated", "user": user})
}

func (ac *AuthController) ChangePassword(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input ChangePasswordInput
	if !bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	user, err := ac.users.Get(ctx, userID)
	if err != nil {
		utils.RespondWithAppError(c, storeError(err, "User not found", "", "Database error"))
		return
	}
	if !utils.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
		utils.RespondWithAppError(c, utils.Unauthorized("Current password is incorrect"))
		return
	}

	hash, err := utils.HashPassword(input.NewPassword, ac.opts.BcryptCost)
	if err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to hash password", err))
		return
	}
	user.PasswordHash = hash

	if err := ac.users.Save(ctx, user); err != nil {
		utils.RespondWithAppError(c, utils.Internal("Failed to update password", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}
