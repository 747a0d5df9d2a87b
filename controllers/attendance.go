package controllers

import (
	"net/http"

	"gympro-backend/models"
	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CheckInInput struct {
	MemberID     uuid.UUID          `json:"memberId" binding:"required"`
	EntryMethod  models.EntryMethod `json:"entryMethod"`
	FacilityArea string             `json:"facilityArea"`
}

type CheckOutInput struct {
	MemberID uuid.UUID `json:"memberId" binding:"required"`
}

type AttendanceController struct {
	Attendance *services.AttendanceService
	Logger     *logrus.Logger
}

func (ac *AttendanceController) CheckIn(c *gin.Context) {
	var input CheckInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	log, err := ac.Attendance.CheckIn(c.Request.Context(), actorFrom(c), input.MemberID, input.EntryMethod, input.FacilityArea)
	if err != nil {
		respondWithServiceError(c, ac.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, log)
}

func (ac *AttendanceController) CheckOut(c *gin.Context) {
	var input CheckOutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	log, err := ac.Attendance.CheckOut(c.Request.Context(), actorFrom(c), input.MemberID)
	if err != nil {
		respondWithServiceError(c, ac.Logger, err)
		return
	}
	c.JSON(http.StatusOK, log)
}
