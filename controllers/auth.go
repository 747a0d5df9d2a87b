// controllers/auth.go
package controllers

import (
	"net/http"
	"strings"

	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	Auth   *services.AuthService
	Tokens utils.TokenConfig
	Logger *logrus.Logger
}

func (ac *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input")
		return
	}

	user, actor, err := ac.Auth.Login(c.Request.Context(), strings.TrimSpace(input.Username), input.Password)
	if err != nil {
		respondWithServiceError(c, ac.Logger, err)
		return
	}

	claims := utils.SessionClaims{Username: actor.Username, Role: actor.Role}
	if actor.StaffID != nil {
		claims.StaffID = actor.StaffID.String()
	}
	token, err := utils.GenerateToken(ac.Tokens, actor.UserID.String(), claims)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	maxAge := int(ac.Tokens.Expiry.Seconds())
	c.SetCookie(
		"token",
		token,
		maxAge,
		"/",
		"",
		true,
		true,
	)

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString(utils.ContextUserID))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	user, err := ac.Auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, ac.Logger, err)
		return
	}
	if user == nil || !user.IsActive {
		utils.RespondWithError(c, http.StatusUnauthorized, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
