package services

import (
	"context"
	"time"

	"fintrack/internal/engine"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
}

// TagServicer defines the contract for tag-related business logic.
type TagServicer interface {
	CreateTag(userID, name, color string) (*models.Tag, error)
	GetUserTags(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Tag], error)
	GetTagByID(userID, tagID string) (*models.Tag, error)
	UpdateTag(userID, tagID string, name, color *string) (*models.Tag, error)
	DeleteTag(userID, tagID string) error
}

// CreditCardServicer defines the contract for credit card business logic.
type CreditCardServicer interface {
	CreateCreditCard(userID, name string, closingDay, dueDay int) (*models.CreditCard, error)
	GetUserCreditCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.CreditCard], error)
	GetCreditCardByID(userID, cardID string) (*models.CreditCard, error)
	UpdateCreditCard(userID, cardID string, name *string, closingDay, dueDay *int) (*models.CreditCard, error)
	DeleteCreditCard(userID, cardID string) error
	GetInvoice(userID, cardID string, period engine.Period) (*engine.Invoice, error)
}

// TransactionDraft carries the user-editable fields of a transaction.
// Fields that do not apply to Category are ignored.
type TransactionDraft struct {
	Category         models.TransactionCategory
	Amount           int64
	Date             time.Time
	Description      string
	TagID            *string
	Paid             bool
	PaymentMethod    *models.PaymentMethod
	CreditCardID     *string
	SavingsDirection *models.SavingsDirection
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate     *time.Time
	ToDate       *time.Time
	Category     *models.TransactionCategory
	TagID        *string
	CreditCardID *string
	GroupID      *string
	MinAmount    *int64
	MaxAmount    *int64
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, draft TransactionDraft, plan engine.Plan) ([]models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, draft TransactionDraft) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	TogglePaid(userID, transactionID string) (*models.Transaction, error)
	SettleGroup(userID, groupID string, after time.Time) (int64, error)
}

// SummaryServicer computes dashboard views over a user's records.
type SummaryServicer interface {
	GetMonthlySummary(ctx context.Context, userID string, period engine.Period) (*engine.Summary, error)
	GetAnnualOverview(ctx context.Context, userID string, year int) (*engine.YearOverview, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
