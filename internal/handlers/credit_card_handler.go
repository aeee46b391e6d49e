package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// CreditCardHandler handles credit card requests.
type CreditCardHandler struct {
	cardService  services.CreditCardServicer
	auditService services.AuditServicer
	now          func() time.Time
}

// NewCreditCardHandler creates a new CreditCardHandler.
func NewCreditCardHandler(cardService services.CreditCardServicer, auditService services.AuditServicer) *CreditCardHandler {
	return &CreditCardHandler{cardService: cardService, auditService: auditService, now: time.Now}
}

// CreateCreditCardRequest represents the request payload for creating a card.
type CreateCreditCardRequest struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	ClosingDay int    `json:"closing_day" binding:"required,day_of_month"`
	DueDay     int    `json:"due_day" binding:"required,day_of_month"`
}

// UpdateCreditCardRequest represents the request payload for updating a card.
type UpdateCreditCardRequest struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=100"`
	ClosingDay *int    `json:"closing_day" binding:"omitempty,day_of_month"`
	DueDay     *int    `json:"due_day" binding:"omitempty,day_of_month"`
}

// CreateCreditCard handles the creation of a new credit card.
// @Summary     Create a credit card
// @Description Register a card with its invoice closing and due days
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCreditCardRequest true "Card details"
// @Success     201 {object} models.CreditCard "Card created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /credit-cards [post]
func (h *CreditCardHandler) CreateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.CreateCreditCard(userID, req.Name, req.ClosingDay, req.DueDay)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_CREDIT_CARD", "credit_card", card.ID, c.ClientIP(),
		map[string]interface{}{"name": card.Name, "closing_day": card.ClosingDay, "due_day": card.DueDay})

	c.JSON(http.StatusCreated, gin.H{"credit_card": card})
}

// GetCreditCards handles listing the user's cards.
// @Summary     Get credit cards
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.CreditCard] "Paginated cards"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /credit-cards [get]
func (h *CreditCardHandler) GetCreditCards(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.cardService.GetUserCreditCards(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCreditCard handles retrieving a specific card.
// @Summary     Get credit card by ID
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     200 {object} models.CreditCard "Card details"
// @Failure     400 {object} ErrorResponse "Invalid card ID"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /credit-cards/{id} [get]
func (h *CreditCardHandler) GetCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	card, err := h.cardService.GetCreditCardByID(userID, cardID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"credit_card": card})
}

// UpdateCreditCard handles changing a card's name or cycle.
// @Summary     Update credit card
// @Tags        credit-cards
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                  true "Card ID"
// @Param       request body UpdateCreditCardRequest true "Fields to change"
// @Success     200 {object} models.CreditCard "Updated card"
// @Failure     400 {object} ErrorResponse "Invalid input or card ID"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /credit-cards/{id} [put]
func (h *CreditCardHandler) UpdateCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCreditCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	card, err := h.cardService.UpdateCreditCard(userID, cardID, req.Name, req.ClosingDay, req.DueDay)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_CREDIT_CARD", "credit_card", card.ID, c.ClientIP(),
		map[string]interface{}{"name": card.Name, "closing_day": card.ClosingDay, "due_day": card.DueDay})

	c.JSON(http.StatusOK, gin.H{"credit_card": card})
}

// DeleteCreditCard handles deleting a card. Purchases made with it are
// counted as cash from then on.
// @Summary     Delete credit card
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Card ID"
// @Success     200 {object} MessageResponse "Card deleted"
// @Failure     400 {object} ErrorResponse "Invalid card ID"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /credit-cards/{id} [delete]
func (h *CreditCardHandler) DeleteCreditCard(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.cardService.DeleteCreditCard(userID, cardID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_CREDIT_CARD", "credit_card", cardID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Credit card deleted successfully"})
}

// GetInvoice returns the card's invoice for a month.
// @Summary     Get credit card invoice
// @Description Purchases billed in the month's invoice, with its window and due date
// @Tags        credit-cards
// @Produce     json
// @Security    BearerAuth
// @Param       id    path  string true  "Card ID"
// @Param       year  query int    false "Year (default current)"
// @Param       month query int    false "Month 1-12 (default current)"
// @Success     200 {object} InvoiceResponse "Invoice"
// @Failure     400 {object} ErrorResponse "Invalid card ID or period"
// @Failure     404 {object} ErrorResponse "Card not found"
// @Router      /credit-cards/{id}/invoice [get]
func (h *CreditCardHandler) GetInvoice(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	cardID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	period, err := parsePeriod(c, h.now())
	if err != nil {
		respondWithError(c, err)
		return
	}

	invoice, err := h.cardService.GetInvoice(userID, cardID, period)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invoice": newInvoiceResponse(*invoice)})
}
