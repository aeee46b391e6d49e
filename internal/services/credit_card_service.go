package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// creditCardService handles credit card business logic.
type creditCardService struct {
	db *gorm.DB
}

// NewCreditCardService creates a new CreditCardServicer.
func NewCreditCardService(db *gorm.DB) CreditCardServicer {
	return &creditCardService{db: db}
}

func validateCycle(closingDay, dueDay int) error {
	if closingDay < 1 || closingDay > 31 || dueDay < 1 || dueDay > 31 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "closing and due days must be between 1 and 31")
	}
	return nil
}

// CreateCreditCard creates a new credit card
func (s *creditCardService) CreateCreditCard(userID, name string, closingDay, dueDay int) (*models.CreditCard, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name is required")
	}
	if err := validateCycle(closingDay, dueDay); err != nil {
		return nil, err
	}

	card := &models.CreditCard{
		UserID:     userID,
		Name:       name,
		ClosingDay: closingDay,
		DueDay:     dueDay,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(card).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return card, nil
}

// GetUserCreditCards retrieves a paginated list of credit cards for a user.
func (s *creditCardService) GetUserCreditCards(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.CreditCard], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.CreditCard{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var cards []models.CreditCard
	if err := base.Order("created_at ASC, id ASC").Scopes(pagination.Paginate(page)).Find(&cards).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(cards, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCreditCardByID retrieves a credit card by ID for a specific user
func (s *creditCardService) GetCreditCardByID(userID, cardID string) (*models.CreditCard, error) {
	var card models.CreditCard
	if err := s.db.Where("id = ? AND user_id = ?", cardID, userID).First(&card).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCreditCardNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &card, nil
}

// UpdateCreditCard changes a card's name or cycle. Nil fields are left
// unchanged. Past invoices are always recomputed from the current cycle.
func (s *creditCardService) UpdateCreditCard(userID, cardID string, name *string, closingDay, dueDay *int) (*models.CreditCard, error) {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "card name cannot be empty")
		}
		updates["name"] = trimmed
	}
	closing, due := card.ClosingDay, card.DueDay
	if closingDay != nil {
		closing = *closingDay
		updates["closing_day"] = closing
	}
	if dueDay != nil {
		due = *dueDay
		updates["due_day"] = due
	}
	if err := validateCycle(closing, due); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.CreditCard{}).Where("id = ? AND user_id = ?", cardID, userID).Updates(updates).Error; err != nil {
				return err
			}
			return bumpRecordsVersion(tx, userID)
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return s.GetCreditCardByID(userID, cardID)
}

// DeleteCreditCard deletes a card. Purchases made with it stay and, with
// no card to bill them, count as cash spending from then on.
func (s *creditCardService) DeleteCreditCard(userID, cardID string) error {
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(card).Error; err != nil {
			return err
		}
		return bumpRecordsVersion(tx, userID)
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetInvoice returns the card's invoice for period with the purchases it
// bills. A window without purchases yields an invoice with a zero total.
func (s *creditCardService) GetInvoice(userID, cardID string, period engine.Period) (*engine.Invoice, error) {
	if err := period.Validate(); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidPeriod, err.Error())
	}
	card, err := s.GetCreditCardByID(userID, cardID)
	if err != nil {
		return nil, err
	}
	ec := toCard(*card)
	after, until := engine.Window(ec, period)

	var purchases []models.Transaction
	if err := s.db.Where(
		"user_id = ? AND category = ? AND payment_method = ? AND credit_card_id = ? AND date > ? AND date <= ?",
		userID, models.CategoryVariableExpense, models.PaymentMethodCredit, cardID, after, until,
	).Find(&purchases).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	records := &engine.Records{CreditCards: []engine.CreditCard{ec}}
	for i := range purchases {
		if rec, ok := toRecord(&purchases[i]); ok {
			records.Add(rec)
		}
	}

	if invoices := engine.ResolveInvoices(records, period); len(invoices) == 1 {
		return &invoices[0], nil
	}
	return &engine.Invoice{
		ID:      engine.InvoiceID(ec.ID, period),
		Card:    ec,
		Period:  period,
		After:   after,
		Until:   until,
		DueDate: period.Day(ec.DueDay),
	}, nil
}
