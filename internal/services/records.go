package services

import (
	"gorm.io/gorm"

	"fintrack/internal/engine"
	"fintrack/internal/models"
	"fintrack/internal/money"
)

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toRecord converts a stored transaction to an engine record. ok is false
// when the stored category is unknown.
func toRecord(t *models.Transaction) (engine.Record, bool) {
	e := engine.Entry{
		ID:              t.ID,
		Amount:          money.Cents(t.Amount),
		Description:     t.Description,
		TagRef:          deref(t.TagID),
		GroupRef:        deref(t.GroupID),
		InstallmentInfo: t.InstallmentInfo,
		Recurring:       t.IsRecurring,
	}
	if t.Date != nil {
		e.Date = engine.Civil(*t.Date)
	}

	switch t.Category {
	case models.CategoryIncome:
		return engine.Income{Entry: e}, true
	case models.CategoryFixedExpense:
		return engine.FixedExpense{Entry: e, Paid: t.Paid}, true
	case models.CategoryVariableExpense:
		v := engine.VariableExpense{Entry: e, Method: engine.PaymentDebit}
		if t.PaymentMethod != nil && *t.PaymentMethod == models.PaymentMethodCredit {
			v.Method = engine.PaymentCredit
			v.CardRef = deref(t.CreditCardID)
		}
		return v, true
	case models.CategoryProvision:
		return engine.Provision{Entry: e}, true
	case models.CategorySavings:
		s := engine.SavingsMovement{Entry: e, Direction: engine.SavingsDeposit}
		if t.SavingsDirection != nil && *t.SavingsDirection == models.SavingsWithdrawal {
			s.Direction = engine.SavingsWithdrawal
		}
		return s, true
	}
	return nil, false
}

// draftRecord builds the engine record a draft describes, ready for Expand.
func draftRecord(d TransactionDraft, groupID string) engine.Record {
	t := models.Transaction{
		Category:         d.Category,
		Amount:           d.Amount,
		Description:      d.Description,
		TagID:            d.TagID,
		GroupID:          optional(groupID),
		Paid:             d.Paid,
		PaymentMethod:    d.PaymentMethod,
		CreditCardID:     d.CreditCardID,
		SavingsDirection: d.SavingsDirection,
	}
	date := d.Date
	t.Date = &date
	rec, _ := toRecord(&t)
	return rec
}

// fromRecord converts an engine record back to a storable transaction.
func fromRecord(userID string, rec engine.Record) models.Transaction {
	e := rec.Header()
	date := e.Date
	t := models.Transaction{
		UserID:          userID,
		Category:        models.TransactionCategory(rec.Category()),
		Amount:          int64(e.Amount),
		Date:            &date,
		Description:     e.Description,
		TagID:           optional(e.TagRef),
		GroupID:         optional(e.GroupRef),
		InstallmentInfo: e.InstallmentInfo,
		IsRecurring:     e.Recurring,
	}
	if e.Date.IsZero() {
		t.Date = nil
	}

	switch v := rec.(type) {
	case engine.FixedExpense:
		t.Paid = v.Paid
	case engine.VariableExpense:
		method := models.PaymentMethod(v.Method)
		t.PaymentMethod = &method
		if v.Method == engine.PaymentCredit {
			t.CreditCardID = optional(v.CardRef)
		}
	case engine.SavingsMovement:
		direction := models.SavingsDirection(v.Direction)
		t.SavingsDirection = &direction
	}
	return t
}

// snapshot is a user's records as the engine sees them.
type snapshot struct {
	records *engine.Records
	unknown int
}

// loadSnapshot reads every record of a user. Rows with an unknown category
// are counted and left out.
func loadSnapshot(db *gorm.DB, userID string) (*snapshot, error) {
	var txs []models.Transaction
	if err := db.Where("user_id = ?", userID).Order("date ASC, id ASC").Find(&txs).Error; err != nil {
		return nil, err
	}
	var tags []models.Tag
	if err := db.Where("user_id = ?", userID).Find(&tags).Error; err != nil {
		return nil, err
	}
	var cards []models.CreditCard
	if err := db.Where("user_id = ?", userID).Order("created_at ASC, id ASC").Find(&cards).Error; err != nil {
		return nil, err
	}

	snap := &snapshot{records: &engine.Records{}}
	for i := range txs {
		rec, ok := toRecord(&txs[i])
		if !ok {
			snap.unknown++
			continue
		}
		snap.records.Add(rec)
	}
	for _, t := range tags {
		snap.records.Tags = append(snap.records.Tags, engine.Tag{ID: t.ID, Name: t.Name, Color: t.Color})
	}
	for _, c := range cards {
		snap.records.CreditCards = append(snap.records.CreditCards, toCard(c))
	}
	return snap, nil
}

func toCard(c models.CreditCard) engine.CreditCard {
	return engine.CreditCard{ID: c.ID, Name: c.Name, ClosingDay: c.ClosingDay, DueDay: c.DueDay}
}

// bumpRecordsVersion invalidates cached summaries of a user. It must run in
// the same transaction as the write it accounts for.
func bumpRecordsVersion(tx *gorm.DB, userID string) error {
	return tx.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("records_version", gorm.Expr("records_version + ?", 1)).Error
}
