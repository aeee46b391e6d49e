package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/uuid"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// normalizeDraft validates a draft and clears the fields its category does
// not use.
func normalizeDraft(d TransactionDraft) (TransactionDraft, error) {
	switch d.Category {
	case models.CategoryIncome, models.CategoryFixedExpense, models.CategoryVariableExpense,
		models.CategoryProvision, models.CategorySavings:
	default:
		return d, apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown transaction category")
	}
	if d.Amount < 0 {
		return d, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount cannot be negative")
	}
	if d.Date.IsZero() {
		return d, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	d.Date = engine.Civil(d.Date)
	if d.TagID != nil && *d.TagID == "" {
		d.TagID = nil
	}

	if d.Category != models.CategoryFixedExpense {
		d.Paid = false
	}
	if d.Category == models.CategoryVariableExpense {
		if d.PaymentMethod == nil {
			return d, apperrors.WithMessage(apperrors.ErrInvalidInput, "payment method is required for variable expenses")
		}
		if *d.PaymentMethod == models.PaymentMethodCredit {
			if d.CreditCardID == nil || *d.CreditCardID == "" {
				return d, apperrors.WithMessage(apperrors.ErrInvalidInput, "credit card is required for credit purchases")
			}
		} else {
			d.CreditCardID = nil
		}
	} else {
		d.PaymentMethod = nil
		d.CreditCardID = nil
	}
	if d.Category == models.CategorySavings {
		if d.SavingsDirection == nil {
			return d, apperrors.WithMessage(apperrors.ErrInvalidInput, "direction is required for savings movements")
		}
	} else {
		d.SavingsDirection = nil
	}
	return d, nil
}

// checkRefs makes sure the tag and card a draft points at belong to the user.
func (s *transactionService) checkRefs(userID string, d TransactionDraft) error {
	if d.TagID != nil {
		var count int64
		if err := s.db.Model(&models.Tag{}).Where("id = ? AND user_id = ?", *d.TagID, userID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrTagNotFound
		}
	}
	if d.CreditCardID != nil {
		var count int64
		if err := s.db.Model(&models.CreditCard{}).Where("id = ? AND user_id = ?", *d.CreditCardID, userID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return apperrors.ErrCreditCardNotFound
		}
	}
	return nil
}

// CreateTransaction stores the records a draft expands to under plan. A
// single plan stores one record; monthly and installment plans store every
// sibling at once, sharing a fresh group ID.
func (s *transactionService) CreateTransaction(userID string, draft TransactionDraft, plan engine.Plan) ([]models.Transaction, error) {
	draft, err := normalizeDraft(draft)
	if err != nil {
		return nil, err
	}
	if _, err := plan.Count(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRecurrence, err.Error())
	}
	if err := s.checkRefs(userID, draft); err != nil {
		return nil, err
	}

	groupID := ""
	if plan.Kind != engine.PlanSingle && plan.Kind != "" {
		groupID = uuid.New()
	}
	records, err := engine.Expand(draftRecord(draft, groupID), plan)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidRecurrence, err.Error())
	}

	txs := make([]models.Transaction, len(records))
	for i, rec := range records {
		txs[i] = fromRecord(userID, rec)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&txs, 100).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txs, nil
}

// GetUserTransactions retrieves a paginated, filtered list of a user's
// transactions, most recent first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("date DESC, id DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", engine.Civil(*f.FromDate))
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", engine.Civil(*f.ToDate))
	}
	if f.Category != nil {
		q = q.Where("category = ?", *f.Category)
	}
	if f.TagID != nil {
		q = q.Where("tag_id = ?", *f.TagID)
	}
	if f.CreditCardID != nil {
		q = q.Where("credit_card_id = ?", *f.CreditCardID)
	}
	if f.GroupID != nil {
		q = q.Where("group_id = ?", *f.GroupID)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces the editable fields of one transaction. The
// category is fixed at creation, and siblings of a group are not touched.
func (s *transactionService) UpdateTransaction(userID, transactionID string, draft TransactionDraft) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if draft.Category == "" {
		draft.Category = transaction.Category
	}
	if draft.Category != transaction.Category {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "the category of a transaction cannot be changed")
	}
	draft, err = normalizeDraft(draft)
	if err != nil {
		return nil, err
	}
	if err := s.checkRefs(userID, draft); err != nil {
		return nil, err
	}

	date := draft.Date
	transaction.Amount = draft.Amount
	transaction.Date = &date
	transaction.Description = draft.Description
	transaction.TagID = draft.TagID
	transaction.Paid = draft.Paid
	transaction.PaymentMethod = draft.PaymentMethod
	transaction.CreditCardID = draft.CreditCardID
	transaction.SavingsDirection = draft.SavingsDirection

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(transaction).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// DeleteTransaction deletes one transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(transaction).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// TogglePaid flips the paid flag of a fixed expense.
func (s *transactionService) TogglePaid(userID, transactionID string) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if transaction.Category != models.CategoryFixedExpense {
		return nil, apperrors.ErrNotAFixedExpense
	}

	transaction.Paid = !transaction.Paid
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(transaction).Update("paid", transaction.Paid).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return transaction, nil
}

// SettleGroup deletes every transaction of a recurrence group dated strictly
// after the given day and returns how many were removed. Earlier siblings,
// including the one on that day, are kept.
func (s *transactionService) SettleGroup(userID, groupID string, after time.Time) (int64, error) {
	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("group_id = ? AND user_id = ?", groupID, userID).Count(&count).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return 0, apperrors.ErrGroupNotFound
	}

	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("group_id = ? AND user_id = ? AND date > ?", groupID, userID, engine.Civil(after)).
			Delete(&models.Transaction{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return removed, nil
}
