package models

import "time"

// TransactionCategory is fixed when a transaction is created.
type TransactionCategory string

const (
	CategoryIncome          TransactionCategory = "income"
	CategoryFixedExpense    TransactionCategory = "fixed_expense"
	CategoryVariableExpense TransactionCategory = "variable_expense"
	CategoryProvision       TransactionCategory = "provision"
	CategorySavings         TransactionCategory = "savings"
)

// PaymentMethod applies to variable expenses.
type PaymentMethod string

const (
	PaymentMethodDebit  PaymentMethod = "debit"
	PaymentMethodCredit PaymentMethod = "credit"
)

// SavingsDirection applies to savings movements.
type SavingsDirection string

const (
	SavingsDeposit    SavingsDirection = "deposit"
	SavingsWithdrawal SavingsDirection = "withdrawal"
)

// Transaction is a single financial record. TagID, CreditCardID and GroupID
// are weak references: deleting the target leaves them dangling and readers
// treat an unresolvable reference as absent.
type Transaction struct {
	Base
	UserID      string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Category    TransactionCategory `gorm:"not null;index" json:"category"`
	Amount      int64               `gorm:"type:bigint;not null" json:"amount"`
	Date        *time.Time          `gorm:"type:date;index" json:"date"`
	Description string              `json:"description"`
	TagID       *string             `gorm:"type:uuid" json:"tag_id,omitempty"`

	// Recurrence siblings
	GroupID         *string `gorm:"type:uuid;index" json:"group_id,omitempty"`
	InstallmentInfo string  `json:"installment_info,omitempty"`
	IsRecurring     bool    `gorm:"not null" json:"is_recurring"`

	// For fixed expenses
	Paid bool `gorm:"not null" json:"paid"`

	// For variable expenses
	PaymentMethod *PaymentMethod `json:"payment_method,omitempty"`
	CreditCardID  *string        `gorm:"type:uuid" json:"credit_card_id,omitempty"`

	// For savings movements
	SavingsDirection *SavingsDirection `json:"savings_direction,omitempty"`
}
