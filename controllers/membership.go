package controllers

import (
	"net/http"
	"strconv"
	"time"

	"gympro-backend/models"
	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type CreateMembershipTypeInput struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	DurationDays   int             `json:"durationDays" binding:"required,gt=0"`
	Price          decimal.Decimal `json:"price"`
	TaxPercentage  decimal.Decimal `json:"taxPercentage"`
	MaxFreezeDays  int             `json:"maxFreezeDays"`
	MaxGuestVisits int             `json:"maxGuestVisits"`
	IsActive       *bool           `json:"isActive"`
}

type EnrollInput struct {
	MemberID         uuid.UUID            `json:"memberId" binding:"required"`
	MembershipTypeID uuid.UUID            `json:"membershipTypeId" binding:"required"`
	StartDate        *time.Time           `json:"startDate"`
	PaymentMethod    models.PaymentMethod `json:"paymentMethod" binding:"required"`
	PaymentStatus    models.PaymentStatus `json:"paymentStatus"`
	TransactionID    string               `json:"transactionId"`
	AutoRenew        bool                 `json:"autoRenew"`
	Notes            string               `json:"notes"`
}

type FreezeInput struct {
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
	Reason    string    `json:"reason"`
}

// MembershipController handles plans, enrolment and freezes.
type MembershipController struct {
	Memberships *services.MembershipService
	Lifecycle   *services.LifecycleService
	Clock       services.Clock
	Logger      *logrus.Logger
}

func (mc *MembershipController) GetMembershipTypes(c *gin.Context) {
	activeOnly := c.DefaultQuery("all", "false") != "true"
	types, err := mc.Memberships.ListTypes(c.Request.Context(), activeOnly)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(types))
}

func (mc *MembershipController) GetMembershipType(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	mt, err := mc.Memberships.GetType(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	if mt == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Membership type not found")
		return
	}
	c.JSON(http.StatusOK, mt)
}

func (mc *MembershipController) CreateMembershipType(c *gin.Context) {
	var input CreateMembershipTypeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	mt := &models.MembershipType{
		Name:           input.Name,
		Description:    input.Description,
		DurationDays:   input.DurationDays,
		Price:          input.Price,
		TaxPercentage:  input.TaxPercentage,
		MaxFreezeDays:  input.MaxFreezeDays,
		MaxGuestVisits: input.MaxGuestVisits,
		IsActive:       input.IsActive == nil || *input.IsActive,
	}
	created, err := mc.Memberships.CreateType(c.Request.Context(), mt)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Enroll records the plan payment and opens the membership
func (mc *MembershipController) Enroll(c *gin.Context) {
	var input EnrollInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	req := services.EnrollRequest{
		MemberID:         input.MemberID,
		MembershipTypeID: input.MembershipTypeID,
		PaymentMethod:    input.PaymentMethod,
		PaymentStatus:    input.PaymentStatus,
		TransactionID:    input.TransactionID,
		AutoRenew:        input.AutoRenew,
		Notes:            input.Notes,
	}
	if input.StartDate != nil {
		req.StartDate = *input.StartDate
	}
	membership, err := mc.Memberships.Enroll(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, mc.Lifecycle.View(*membership, mc.Clock()))
}

func (mc *MembershipController) CancelMembership(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	membership, err := mc.Memberships.Cancel(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, mc.Lifecycle.View(*membership, mc.Clock()))
}

func (mc *MembershipController) AddFreeze(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input FreezeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	freeze, err := mc.Memberships.AddFreeze(c.Request.Context(), actorFrom(c), id, input.StartDate, input.EndDate, input.Reason)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, freeze)
}

func (mc *MembershipController) RemoveFreeze(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := mc.Memberships.RemoveFreeze(c.Request.Context(), actorFrom(c), id); err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (mc *MembershipController) GetActiveMemberships(c *gin.Context) {
	now := mc.Clock()
	memberships, err := mc.Lifecycle.ActiveMemberships(c.Request.Context(), now)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, mc.Lifecycle.Views(memberships, now))
}

// GetExpiringMemberships lists active memberships ending within ?days=, soonest first
func (mc *MembershipController) GetExpiringMemberships(c *gin.Context) {
	days, ok := daysQuery(c, models.ExpiringSoonDays, 0)
	if !ok {
		return
	}
	now := mc.Clock()
	memberships, err := mc.Lifecycle.ExpiringWithin(c.Request.Context(), now, days)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, mc.Lifecycle.Views(memberships, now))
}

// daysQuery reads ?days=, answering 400 when it does not parse or exceeds
// max. A max of 0 means no upper limit.
func daysQuery(c *gin.Context, def, max int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return def, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid days parameter")
		return 0, false
	}
	if max > 0 && days > max {
		utils.RespondWithError(c, http.StatusBadRequest, "days must be at most "+strconv.Itoa(max))
		return 0, false
	}
	return days, true
}
