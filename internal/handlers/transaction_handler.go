package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/money"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/uuid"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// RecurrenceRequest asks for a series of monthly siblings instead of a
// single record.
type RecurrenceRequest struct {
	Type         engine.PlanKind `json:"type" binding:"required,recurrence_type"`
	Installments int             `json:"installments" binding:"omitempty,min=1,max=360"`
}

// TransactionFields are the editable fields shared by create and update.
// Amount is a decimal string such as "12.50".
type TransactionFields struct {
	Amount           string                   `json:"amount" binding:"required,amount"`
	Date             string                   `json:"date" binding:"required"`
	Description      string                   `json:"description" binding:"max=500"`
	TagID            *string                  `json:"tag_id" binding:"omitempty,uuid"`
	Paid             bool                     `json:"paid"`
	PaymentMethod    *models.PaymentMethod    `json:"payment_method" binding:"omitempty,payment_method"`
	CreditCardID     *string                  `json:"credit_card_id" binding:"omitempty,uuid"`
	SavingsDirection *models.SavingsDirection `json:"savings_direction" binding:"omitempty,savings_direction"`
}

// CreateTransactionRequest represents the request payload for creating a transaction.
type CreateTransactionRequest struct {
	Category models.TransactionCategory `json:"category" binding:"required,transaction_category"`
	TransactionFields
	Recurrence *RecurrenceRequest `json:"recurrence"`
}

// UpdateTransactionRequest represents the request payload for updating a
// transaction. Category may be repeated but not changed.
type UpdateTransactionRequest struct {
	Category models.TransactionCategory `json:"category" binding:"omitempty,transaction_category"`
	TransactionFields
}

// CreatedTransactionsResponse lists the records a create call stored.
type CreatedTransactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	GroupID      string               `json:"group_id,omitempty"`
}

// SettleGroupResponse reports how many future siblings were removed.
type SettleGroupResponse struct {
	Removed int64 `json:"removed"`
}

// MessageResponse represents a simple message response
type MessageResponse struct {
	Message string `json:"message"`
}

func (f TransactionFields) draft(category models.TransactionCategory) (services.TransactionDraft, error) {
	amount, err := money.Parse(f.Amount)
	if err != nil {
		return services.TransactionDraft{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid amount")
	}
	date, err := parseDate(f.Date)
	if err != nil {
		return services.TransactionDraft{}, err
	}
	return services.TransactionDraft{
		Category:         category,
		Amount:           int64(amount),
		Date:             date,
		Description:      f.Description,
		TagID:            f.TagID,
		Paid:             f.Paid,
		PaymentMethod:    f.PaymentMethod,
		CreditCardID:     f.CreditCardID,
		SavingsDirection: f.SavingsDirection,
	}, nil
}

// CreateTransaction handles the creation of a transaction or a recurring series.
// @Summary     Create a transaction
// @Description Create a record of any category. With a recurrence it creates 24 monthly siblings or N installments sharing a group ID.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} CreatedTransactionsResponse "Transactions created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Tag or credit card not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	draft, err := req.draft(req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	plan := engine.Plan{Kind: engine.PlanSingle}
	if req.Recurrence != nil {
		plan = engine.Plan{Kind: req.Recurrence.Type, Installments: req.Recurrence.Installments}
	}

	txs, err := h.transactionService.CreateTransaction(userID, draft, plan)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := CreatedTransactionsResponse{Transactions: txs}
	if len(txs) > 0 && txs[0].GroupID != nil {
		resp.GroupID = *txs[0].GroupID
	}
	for _, tx := range txs {
		h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", tx.ID, c.ClientIP(),
			map[string]interface{}{"category": tx.Category, "amount": tx.Amount, "plan": plan.Kind})
	}

	c.JSON(http.StatusCreated, resp)
}

// GetUserTransactions handles listing the authenticated user's transactions.
// @Summary     Get user transactions
// @Description Get a paginated list of transactions, most recent first, with optional filters
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       page           query int    false "Page number (default 1)"
// @Param       page_size      query int    false "Items per page (default 20, max 100)"
// @Param       from_date      query string false "Filter by start date (YYYY-MM-DD or RFC3339)"
// @Param       to_date        query string false "Filter by end date (YYYY-MM-DD or RFC3339)"
// @Param       category       query string false "Filter by category"
// @Param       tag_id         query string false "Filter by tag ID"
// @Param       credit_card_id query string false "Filter by credit card ID"
// @Param       group_id       query string false "Filter by recurrence group ID"
// @Param       min_amount     query string false "Filter by minimum amount (decimal)"
// @Param       max_amount     query string false "Filter by maximum amount (decimal)"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetUserTransactions(c *gin.Context) {
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

	filter, err := parseTransactionFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTransactionFilter(c *gin.Context) (services.TransactionFilter, error) {
	var filter services.TransactionFilter
	var err error

	if filter.FromDate, err = parseOptionalDate(c, "from_date"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = parseOptionalDate(c, "to_date"); err != nil {
		return filter, err
	}

	if v := c.Query("category"); v != "" {
		category := models.TransactionCategory(v)
		switch category {
		case models.CategoryIncome, models.CategoryFixedExpense, models.CategoryVariableExpense,
			models.CategoryProvision, models.CategorySavings:
			filter.Category = &category
		default:
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput,
				"invalid category, must be income, fixed_expense, variable_expense, provision, or savings")
		}
	}

	for name, dst := range map[string]**string{
		"tag_id":         &filter.TagID,
		"credit_card_id": &filter.CreditCardID,
		"group_id":       &filter.GroupID,
	} {
		v := c.Query(name)
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid "+name)
		}
		*dst = &id
	}

	if filter.MinAmount, err = parseOptionalAmount(c, "min_amount"); err != nil {
		return filter, err
	}
	if filter.MaxAmount, err = parseOptionalAmount(c, "max_amount"); err != nil {
		return filter, err
	}

	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction.
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateTransaction handles replacing the editable fields of one transaction.
// @Summary     Update transaction
// @Description Update one record. Its category cannot change and its recurrence siblings are left alone.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Transaction details"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction, tag or card not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	draft, err := req.draft(req.Category)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, draft)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"amount": transaction.Amount, "date": transaction.Date})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting one transaction.
// @Summary     Delete transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// TogglePaid handles flipping the paid flag of a fixed expense.
// @Summary     Toggle paid
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Not a fixed expense"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/paid [patch]
func (h *TransactionHandler) TogglePaid(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.TogglePaid(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "TOGGLE_PAID", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"paid": transaction.Paid})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// SettleGroup handles removing the future siblings of a recurrence group.
// @Summary     Settle a recurrence group
// @Description Delete every sibling dated after the given day (default today); earlier ones are kept
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       group_id path  string true  "Group ID"
// @Param       after    query string false "Keep siblings up to this day (YYYY-MM-DD)"
// @Success     200 {object} SettleGroupResponse "Siblings removed"
// @Failure     400 {object} ErrorResponse "Invalid group ID or date"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Group not found"
// @Router      /transactions/groups/{group_id} [delete]
func (h *TransactionHandler) SettleGroup(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "group_id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	after := engine.Civil(time.Now())
	if v, err := parseOptionalDate(c, "after"); err != nil {
		respondWithError(c, err)
		return
	} else if v != nil {
		after = *v
	}

	removed, err := h.transactionService.SettleGroup(userID, groupID, after)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "SETTLE_GROUP", "transaction_group", groupID, c.ClientIP(),
		map[string]interface{}{"after": after.Format(time.DateOnly), "removed": removed})

	c.JSON(http.StatusOK, SettleGroupResponse{Removed: removed})
}
