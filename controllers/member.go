package controllers

import (
	"net/http"
	"time"

	"gympro-backend/models"
	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// MemberInput is the full member record accepted by create and update.
// Update replaces every field.
type MemberInput struct {
	MembershipNumber      string              `json:"membershipNumber"`
	FirstName             string              `json:"firstName" binding:"required"`
	LastName              string              `json:"lastName" binding:"required"`
	DateOfBirth           *time.Time          `json:"dateOfBirth"`
	Gender                models.Gender       `json:"gender"`
	Phone                 string              `json:"phone" binding:"required,phone"`
	Email                 string              `json:"email"`
	AlternatePhone        string              `json:"alternatePhone"`
	EmergencyContactName  string              `json:"emergencyContactName"`
	EmergencyContactPhone string              `json:"emergencyContactPhone"`
	Address               string              `json:"address"`
	City                  string              `json:"city"`
	State                 string              `json:"state"`
	ZipCode               string              `json:"zipCode"`
	PhotoPath             string              `json:"photoPath"`
	MedicalConditions     string              `json:"medicalConditions"`
	FitnessGoals          string              `json:"fitnessGoals"`
	BloodGroup            string              `json:"bloodGroup"`
	EnrollmentDate        *time.Time          `json:"enrollmentDate"`
	ReferredByID          *uuid.UUID          `json:"referredById"`
	Status                models.MemberStatus `json:"status"`
}

func (in MemberInput) toModel() *models.Member {
	m := &models.Member{
		MembershipNumber:      in.MembershipNumber,
		FirstName:             in.FirstName,
		LastName:              in.LastName,
		DateOfBirth:           in.DateOfBirth,
		Gender:                in.Gender,
		Phone:                 in.Phone,
		Email:                 in.Email,
		AlternatePhone:        in.AlternatePhone,
		EmergencyContactName:  in.EmergencyContactName,
		EmergencyContactPhone: in.EmergencyContactPhone,
		Address:               in.Address,
		City:                  in.City,
		State:                 in.State,
		ZipCode:               in.ZipCode,
		PhotoPath:             in.PhotoPath,
		MedicalConditions:     in.MedicalConditions,
		FitnessGoals:          in.FitnessGoals,
		BloodGroup:            in.BloodGroup,
		ReferredByID:          in.ReferredByID,
		Status:                in.Status,
	}
	if in.EnrollmentDate != nil {
		m.EnrollmentDate = *in.EnrollmentDate
	}
	return m
}

// MemberController handles the member directory.
type MemberController struct {
	Members     *services.MemberService
	Memberships *services.MembershipService
	Payments    *services.PaymentService
	Attendance  *services.AttendanceService
	Lifecycle   *services.LifecycleService
	Clock       services.Clock
	Logger      *logrus.Logger
}

// CreateMember adds a member, allocating a membership number when none is given
func (mc *MemberController) CreateMember(c *gin.Context) {
	var input MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	member, err := mc.Members.Add(c.Request.Context(), input.toModel())
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetMembers lists members, or searches them when q is given
func (mc *MemberController) GetMembers(c *gin.Context) {
	members, err := mc.Members.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(members))
}

func (mc *MemberController) GetMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	member, err := mc.Members.Get(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	if member == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Member not found")
		return
	}
	c.JSON(http.StatusOK, member)
}

func (mc *MemberController) GetMemberByNumber(c *gin.Context) {
	member, err := mc.Members.GetByMembershipNumber(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	if member == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Member not found")
		return
	}
	c.JSON(http.StatusOK, member)
}

func (mc *MemberController) UpdateMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input MemberInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	member := input.toModel()
	member.ID = id
	updated, err := mc.Members.Update(c.Request.Context(), member)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteMember removes a member and everything recorded against them
func (mc *MemberController) DeleteMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := mc.Members.Delete(c.Request.Context(), id); err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (mc *MemberController) GetMemberMemberships(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	memberships, err := mc.Memberships.ListByMember(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, mc.Lifecycle.Views(memberships, mc.Clock()))
}

func (mc *MemberController) GetMemberPayments(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	payments, err := mc.Payments.ListByMember(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(payments))
}

func (mc *MemberController) GetMemberAttendance(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	logs, err := mc.Attendance.ListByMember(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, mc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(logs))
}

// nonNil makes empty listings encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
