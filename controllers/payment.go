package controllers

import (
	"net/http"
	"time"

	"gympro-backend/models"
	"gympro-backend/services"
	"gympro-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CreatePaymentInput defines the expected JSON structure for recording a payment
type CreatePaymentInput struct {
	MemberID      uuid.UUID            `json:"memberId" binding:"required"`
	Amount        decimal.Decimal      `json:"amount"`
	TaxAmount     decimal.Decimal      `json:"taxAmount"`
	DueDate       *time.Time           `json:"dueDate"`
	PaymentMethod models.PaymentMethod `json:"paymentMethod" binding:"required"`
	PaymentType   models.PaymentType   `json:"paymentType"`
	Status        models.PaymentStatus `json:"status"`
	TransactionID string               `json:"transactionId"`
	Notes         string               `json:"notes"`
}

type UpdatePaymentStatusInput struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

type PaymentController struct {
	Payments *services.PaymentService
	Logger   *logrus.Logger
}

func (pc *PaymentController) CreatePayment(c *gin.Context) {
	var input CreatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	req := services.PaymentRequest{
		MemberID:      input.MemberID,
		Amount:        input.Amount,
		TaxAmount:     input.TaxAmount,
		PaymentMethod: input.PaymentMethod,
		PaymentType:   input.PaymentType,
		Status:        input.Status,
		TransactionID: input.TransactionID,
		Notes:         input.Notes,
	}
	if input.DueDate != nil {
		req.DueDate = *input.DueDate
	}
	payment, err := pc.Payments.Record(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondWithServiceError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func (pc *PaymentController) GetPayment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	payment, err := pc.Payments.Get(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, pc.Logger, err)
		return
	}
	if payment == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (pc *PaymentController) GetPaymentByReceipt(c *gin.Context) {
	payment, err := pc.Payments.GetByReceiptNumber(c.Request.Context(), c.Param("receipt"))
	if err != nil {
		respondWithServiceError(c, pc.Logger, err)
		return
	}
	if payment == nil {
		utils.RespondWithError(c, http.StatusNotFound, "Payment not found")
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (pc *PaymentController) UpdatePaymentStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input UpdatePaymentStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}
	payment, err := pc.Payments.UpdateStatus(c.Request.Context(), actorFrom(c), id, input.Status)
	if err != nil {
		respondWithServiceError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (pc *PaymentController) GetOverduePayments(c *gin.Context) {
	payments, err := pc.Payments.Overdue(c.Request.Context())
	if err != nil {
		respondWithServiceError(c, pc.Logger, err)
		return
	}
	c.JSON(http.StatusOK, nonNil(payments))
}
