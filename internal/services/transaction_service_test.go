package services

import (
	"testing"
	"time"

	"fintrack/internal/engine"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func debit() *models.PaymentMethod {
	m := models.PaymentMethodDebit
	return &m
}

func credit() *models.PaymentMethod {
	m := models.PaymentMethodCredit
	return &m
}

func deposit() *models.SavingsDirection {
	d := models.SavingsDeposit
	return &d
}

func draftOn(category models.TransactionCategory, amount int64, date time.Time) TransactionDraft {
	return TransactionDraft{Category: category, Amount: amount, Date: date, Description: "draft"}
}

func TestCreateTransaction(t *testing.T) {
	day := time.Date(2025, time.January, 31, 15, 30, 0, 0, time.UTC)

	t.Run("single", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		txs, err := svc.CreateTransaction(user.ID, draftOn(models.CategoryIncome, 500000, day), engine.Plan{Kind: engine.PlanSingle})
		testutil.AssertNoError(t, err)

		if len(txs) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(txs))
		}
		if txs[0].GroupID != nil {
			t.Error("single transactions should not belong to a group")
		}
		if !txs[0].Date.Equal(engine.Date(2025, time.January, 31)) {
			t.Errorf("expected the date without clock, got %s", txs[0].Date)
		}
		if v := recordsVersion(t, NewUserService(db), user.ID); v != 1 {
			t.Errorf("expected records version 1, got %d", v)
		}
	})

	t.Run("monthly", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		draft := draftOn(models.CategoryFixedExpense, 120000, day)
		draft.Paid = true
		txs, err := svc.CreateTransaction(user.ID, draft, engine.Plan{Kind: engine.PlanMonthly})
		testutil.AssertNoError(t, err)

		if len(txs) != engine.MonthlyHorizon {
			t.Fatalf("expected %d siblings, got %d", engine.MonthlyHorizon, len(txs))
		}
		if !txs[1].Date.Equal(engine.Date(2025, time.February, 28)) {
			t.Errorf("expected Feb 28 for the second sibling, got %s", txs[1].Date)
		}
		if !txs[0].Paid || txs[1].Paid {
			t.Error("only the first sibling keeps the paid flag")
		}
		for _, tx := range txs {
			if tx.GroupID == nil || *tx.GroupID != *txs[0].GroupID {
				t.Fatal("expected every sibling to share the group ID")
			}
			if !tx.IsRecurring {
				t.Fatal("expected monthly siblings to be recurring")
			}
		}
	})

	t.Run("installments", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCreditCard(t, db, user.ID, 5, 12)

		draft := draftOn(models.CategoryVariableExpense, 10000, day)
		draft.PaymentMethod = credit()
		draft.CreditCardID = &card.ID
		txs, err := svc.CreateTransaction(user.ID, draft, engine.Plan{Kind: engine.PlanInstallments, Installments: 3})
		testutil.AssertNoError(t, err)

		if len(txs) != 3 {
			t.Fatalf("expected 3 installments, got %d", len(txs))
		}
		if txs[2].InstallmentInfo != "3/3" {
			t.Errorf("expected installment info 3/3, got %q", txs[2].InstallmentInfo)
		}
		if txs[2].CreditCardID == nil || *txs[2].CreditCardID != card.ID {
			t.Error("expected installments to keep the card")
		}

		var stored int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&stored)
		if stored != 3 {
			t.Errorf("expected 3 stored rows, got %d", stored)
		}
	})

	t.Run("validation", func(t *testing.T) {
		tests := []struct {
			name     string
			draft    func(user *models.User) TransactionDraft
			plan     engine.Plan
			wantCode string
		}{
			{
				name:     "negative_amount",
				draft:    func(*models.User) TransactionDraft { return draftOn(models.CategoryIncome, -1, day) },
				wantCode: "INVALID_INPUT",
			},
			{
				name:     "missing_date",
				draft:    func(*models.User) TransactionDraft { return draftOn(models.CategoryIncome, 100, time.Time{}) },
				wantCode: "INVALID_INPUT",
			},
			{
				name:     "unknown_category",
				draft:    func(*models.User) TransactionDraft { return draftOn("transfer", 100, day) },
				wantCode: "INVALID_INPUT",
			},
			{
				name:     "variable_without_method",
				draft:    func(*models.User) TransactionDraft { return draftOn(models.CategoryVariableExpense, 100, day) },
				wantCode: "INVALID_INPUT",
			},
			{
				name: "credit_without_card",
				draft: func(*models.User) TransactionDraft {
					d := draftOn(models.CategoryVariableExpense, 100, day)
					d.PaymentMethod = credit()
					return d
				},
				wantCode: "INVALID_INPUT",
			},
			{
				name:     "savings_without_direction",
				draft:    func(*models.User) TransactionDraft { return draftOn(models.CategorySavings, 100, day) },
				wantCode: "INVALID_INPUT",
			},
			{
				name: "unknown_tag",
				draft: func(*models.User) TransactionDraft {
					d := draftOn(models.CategoryProvision, 100, day)
					tag := "0192f0c4-0000-7000-8000-000000000000"
					d.TagID = &tag
					return d
				},
				wantCode: "TAG_NOT_FOUND",
			},
			{
				name: "unknown_card",
				draft: func(*models.User) TransactionDraft {
					d := draftOn(models.CategoryVariableExpense, 100, day)
					d.PaymentMethod = credit()
					card := "0192f0c4-0000-7000-8000-000000000000"
					d.CreditCardID = &card
					return d
				},
				wantCode: "CREDIT_CARD_NOT_FOUND",
			},
			{
				name:     "too_many_installments",
				draft:    func(*models.User) TransactionDraft { return draftOn(models.CategoryIncome, 100, day) },
				plan:     engine.Plan{Kind: engine.PlanInstallments, Installments: engine.MaxInstallments + 1},
				wantCode: "INVALID_RECURRENCE",
			},
			{
				name:     "unknown_plan",
				draft:    func(*models.User) TransactionDraft { return draftOn(models.CategoryIncome, 100, day) },
				plan:     engine.Plan{Kind: "weekly"},
				wantCode: "INVALID_RECURRENCE",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				db := testutil.SetupTestDB(t)
				defer testutil.TeardownTestDB(t, db)
				svc := NewTransactionService(db)
				user := testutil.CreateTestUser(t, db)

				_, err := svc.CreateTransaction(user.ID, tt.draft(user), tt.plan)
				testutil.AssertAppError(t, err, tt.wantCode)
			})
		}
	})

	t.Run("clears_unrelated_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		card := testutil.CreateTestCreditCard(t, db, user.ID, 5, 12)

		draft := draftOn(models.CategoryVariableExpense, 100, day)
		draft.PaymentMethod = debit()
		draft.CreditCardID = &card.ID
		draft.SavingsDirection = deposit()
		draft.Paid = true

		txs, err := svc.CreateTransaction(user.ID, draft, engine.Plan{})
		testutil.AssertNoError(t, err)

		if txs[0].CreditCardID != nil || txs[0].SavingsDirection != nil || txs[0].Paid {
			t.Errorf("expected debit purchase without card, direction or paid flag, got %+v", txs[0])
		}
	})
}

func TestGetUserTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryIncome, 500000, testutil.Date(2025, time.March, 1))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryVariableExpense, 1500, testutil.Date(2025, time.March, 10))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryVariableExpense, 9000, testutil.Date(2025, time.March, 20))
	testutil.CreateTestTransaction(t, db, user.ID, models.CategoryVariableExpense, 2000, testutil.Date(2025, time.April, 2))
	testutil.CreateTestTransaction(t, db, other.ID, models.CategoryVariableExpense, 1000, testutil.Date(2025, time.March, 10))

	t.Run("all_newest_first", func(t *testing.T) {
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 4 {
			t.Fatalf("expected 4 transactions, got %d", page.TotalItems)
		}
		if page.Data[0].Amount != 2000 || page.Data[3].Amount != 500000 {
			t.Errorf("expected newest first, got %d ... %d", page.Data[0].Amount, page.Data[3].Amount)
		}
	})

	t.Run("category_and_month", func(t *testing.T) {
		category := models.CategoryVariableExpense
		from := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{
			Category: &category,
			FromDate: &from,
			ToDate:   &to,
		})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 2 {
			t.Errorf("expected 2 March expenses, got %d", page.TotalItems)
		}
	})

	t.Run("amount_range", func(t *testing.T) {
		minAmount, maxAmount := int64(1000), int64(5000)
		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{
			MinAmount: &minAmount,
			MaxAmount: &maxAmount,
		})
		testutil.AssertNoError(t, err)

		if page.TotalItems != 2 {
			t.Errorf("expected 2 transactions between 10.00 and 50.00, got %d", page.TotalItems)
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("replaces_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tag := testutil.CreateTestTag(t, db, user.ID)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryVariableExpense, 1500, testutil.Date(2025, time.March, 10))

		draft := TransactionDraft{
			Amount:        2500,
			Date:          time.Date(2025, time.March, 12, 0, 0, 0, 0, time.UTC),
			Description:   "Dinner",
			TagID:         &tag.ID,
			PaymentMethod: debit(),
		}
		updated, err := svc.UpdateTransaction(user.ID, tx.ID, draft)
		testutil.AssertNoError(t, err)

		if updated.Amount != 2500 || updated.Description != "Dinner" {
			t.Errorf("expected updated amount and description, got %+v", updated)
		}
		if updated.TagID == nil || *updated.TagID != tag.ID {
			t.Error("expected the tag to be set")
		}
	})

	t.Run("category_is_fixed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryIncome, 1500, testutil.Date(2025, time.March, 10))

		_, err := svc.UpdateTransaction(user.ID, tx.ID, draftOn(models.CategoryProvision, 1500, time.Now()))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.UpdateTransaction(user.ID, "0192f0c4-0000-7000-8000-000000000000", draftOn(models.CategoryIncome, 1, time.Now()))
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestDeleteTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewTransactionService(db)
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	tx := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryIncome, 1500, testutil.Date(2025, time.March, 10))

	err := svc.DeleteTransaction(other.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteTransaction(user.ID, tx.ID))

	_, err = svc.GetTransactionByID(user.ID, tx.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestTogglePaid(t *testing.T) {
	t.Run("flips_flag", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryFixedExpense, 120000, testutil.Date(2025, time.March, 10))

		toggled, err := svc.TogglePaid(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if !toggled.Paid {
			t.Fatal("expected the bill to be paid")
		}

		again, err := svc.TogglePaid(user.ID, tx.ID)
		testutil.AssertNoError(t, err)
		if again.Paid {
			t.Error("expected the bill to be unpaid after a second toggle")
		}
	})

	t.Run("rejects_other_categories", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		tx := testutil.CreateTestTransaction(t, db, user.ID, models.CategoryVariableExpense, 1500, testutil.Date(2025, time.March, 10))

		_, err := svc.TogglePaid(user.ID, tx.ID)
		testutil.AssertAppError(t, err, "NOT_A_FIXED_EXPENSE")
	})
}

func TestSettleGroup(t *testing.T) {
	t.Run("removes_later_siblings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		txs, err := svc.CreateTransaction(user.ID,
			draftOn(models.CategoryFixedExpense, 30000, time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)),
			engine.Plan{Kind: engine.PlanInstallments, Installments: 6})
		testutil.AssertNoError(t, err)
		groupID := *txs[0].GroupID

		removed, err := svc.SettleGroup(user.ID, groupID, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		if removed != 3 {
			t.Errorf("expected April to June removed, got %d", removed)
		}

		page, err := svc.GetUserTransactions(user.ID, pagination.PageRequest{}, TransactionFilter{GroupID: &groupID})
		testutil.AssertNoError(t, err)
		if page.TotalItems != 3 {
			t.Errorf("expected 3 siblings left, got %d", page.TotalItems)
		}
	})

	t.Run("unknown_group", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.SettleGroup(user.ID, "0192f0c4-0000-7000-8000-000000000000", time.Now())
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})
}
