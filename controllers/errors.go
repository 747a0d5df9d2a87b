package controllers

import (
	"errors"
	"net/http"

	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// respondWithServiceError maps the service error taxonomy onto HTTP statuses.
func respondWithServiceError(c *gin.Context, logger *logrus.Logger, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		status := http.StatusBadRequest
		if verr.Rule == "unique" {
			status = http.StatusConflict
		}
		c.AbortWithStatusJSON(status, gin.H{
			"error": verr.Message,
			"field": verr.Field,
			"rule":  verr.Rule,
		})
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrRateLimited):
		utils.RespondWithError(c, http.StatusTooManyRequests, "Too many attempts, try again later")
	case errors.Is(err, services.ErrStorageUnavailable):
		logger.WithError(err).Error("Storage unavailable")
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Storage unavailable")
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("Request failed")
		utils.RespondWithError(c, http.StatusInternalServerError, "Database error")
	}
}

// actorFrom rebuilds the acting staff identity set by AuthMiddleware.
func actorFrom(c *gin.Context) services.Actor {
	actor := services.Actor{
		Username: c.GetString(utils.ContextUsername),
		Role:     c.GetString(utils.ContextRole),
	}
	if id, err := uuid.Parse(c.GetString(utils.ContextUserID)); err == nil {
		actor.UserID = id
	}
	if id, err := uuid.Parse(c.GetString(utils.ContextStaffID)); err == nil {
		actor.StaffID = &id
	}
	return actor
}

// paramID parses the named path parameter, answering 400 when malformed.
func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return uuid.Nil, false
	}
	return id, true
}
