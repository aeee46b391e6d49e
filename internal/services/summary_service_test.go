package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"fintrack/internal/engine"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time { return time.Date(year, month, day, 14, 0, 0, 0, time.UTC) }
}

func newTestSummaryService(t *testing.T, db *gorm.DB) SummaryServicer {
	t.Helper()
	svc, err := NewSummaryService(db, SummaryOptions{Now: fixedClock(2025, time.March, 10)})
	if err != nil {
		t.Fatalf("failed to create summary service: %v", err)
	}
	return svc
}

// seedMarch stores a month with income, a bill, a food envelope overrun
// towards its ceiling, a card purchase and savings on both sides of the month.
func seedMarch(t *testing.T, db *gorm.DB, userID string) {
	t.Helper()
	tag := testutil.CreateTestTag(t, db, userID)
	card := testutil.CreateTestCreditCard(t, db, userID, 5, 12)

	testutil.CreateTestTransaction(t, db, userID, models.CategoryIncome, 500000, testutil.Date(2025, time.March, 1))
	testutil.CreateTestTransaction(t, db, userID, models.CategoryFixedExpense, 120000, testutil.Date(2025, time.March, 15))

	provision := testutil.CreateTestTransaction(t, db, userID, models.CategoryProvision, 60000, testutil.Date(2025, time.March, 1))
	db.Model(provision).Update("tag_id", tag.ID)
	food := testutil.CreateTestTransaction(t, db, userID, models.CategoryVariableExpense, 55000, testutil.Date(2025, time.March, 5))
	db.Model(food).Update("tag_id", tag.ID)

	testutil.CreateTestCreditPurchase(t, db, userID, card.ID, 4000, testutil.Date(2025, time.March, 2))

	testutil.CreateTestTransaction(t, db, userID, models.CategorySavings, 10000, testutil.Date(2025, time.February, 20))
	testutil.CreateTestTransaction(t, db, userID, models.CategorySavings, 20000, testutil.Date(2025, time.March, 3))
}

func TestGetMonthlySummary(t *testing.T) {
	march := engine.Period{Year: 2025, Month: time.March}

	t.Run("computes_dashboard", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)
		user := testutil.CreateTestUser(t, db)
		seedMarch(t, db, user.ID)

		summary, err := svc.GetMonthlySummary(context.Background(), user.ID, march)
		testutil.AssertNoError(t, err)

		totals := summary.Totals
		checks := []struct {
			name      string
			got, want int64
		}{
			{"income", int64(totals.Income), 500000},
			{"fixed", int64(totals.Fixed), 124000},
			{"effective provisioned", int64(totals.EffectiveProvisionedSpend), 60000},
			{"unprovisioned", int64(totals.UnprovisionedVariableSpend), 4000},
			{"committed", int64(totals.CommittedSpend), 188000},
			{"surplus", int64(totals.ProjectedSurplus), 292000},
			{"pending", int64(totals.PendingCommitments), 129000},
			{"savings before month", int64(summary.Position.BeforeMonth), 10000},
			{"savings now", int64(summary.Position.Current), 30000},
		}
		for _, c := range checks {
			if c.got != c.want {
				t.Errorf("%s: expected %d, got %d", c.name, c.want, c.got)
			}
		}

		if len(summary.Invoices) != 1 || summary.Invoices[0].Total != 4000 {
			t.Errorf("expected one invoice of 4000, got %+v", summary.Invoices)
		}
		if len(summary.Alerts.DueSoon) != 1 || summary.Alerts.DueSoon[0].Invoice == nil {
			t.Errorf("expected the invoice due on the 12th to be due soon, got %+v", summary.Alerts.DueSoon)
		}
		if len(summary.Alerts.CriticalEnvelopes) != 1 {
			t.Errorf("expected the food envelope to be critical, got %d", len(summary.Alerts.CriticalEnvelopes))
		}
		if !summary.Today.Equal(engine.Date(2025, time.March, 10)) {
			t.Errorf("expected today 2025-03-10, got %s", summary.Today)
		}
	})

	t.Run("writes_invalidate_cache", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)
		txSvc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := txSvc.CreateTransaction(user.ID, draftOn(models.CategoryIncome, 1000, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)), engine.Plan{})
		testutil.AssertNoError(t, err)

		first, err := svc.GetMonthlySummary(context.Background(), user.ID, march)
		testutil.AssertNoError(t, err)
		if first.Totals.Income != 1000 {
			t.Fatalf("expected income 1000, got %d", first.Totals.Income)
		}

		_, err = txSvc.CreateTransaction(user.ID, draftOn(models.CategoryIncome, 2000, time.Date(2025, time.March, 2, 0, 0, 0, 0, time.UTC)), engine.Plan{})
		testutil.AssertNoError(t, err)

		second, err := svc.GetMonthlySummary(context.Background(), user.ID, march)
		testutil.AssertNoError(t, err)
		if second.Totals.Income != 3000 {
			t.Errorf("expected income 3000 after a write, got %d", second.Totals.Income)
		}
	})

	t.Run("concurrent_callers_agree", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)
		user := testutil.CreateTestUser(t, db)
		seedMarch(t, db, user.ID)

		var wg sync.WaitGroup
		results := make([]*engine.Summary, 8)
		errs := make([]error, 8)
		for i := range results {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i], errs[i] = svc.GetMonthlySummary(context.Background(), user.ID, march)
			}(i)
		}
		wg.Wait()

		for i := range results {
			testutil.AssertNoError(t, errs[i])
			if results[i].Totals != results[0].Totals {
				t.Errorf("caller %d saw different totals", i)
			}
		}
	})

	t.Run("unknown_category_is_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestTransaction(t, db, user.ID, models.CategoryIncome, 1000, testutil.Date(2025, time.March, 1))
		testutil.CreateTestTransaction(t, db, user.ID, "transfer", 999, testutil.Date(2025, time.March, 1))

		summary, err := svc.GetMonthlySummary(context.Background(), user.ID, march)
		testutil.AssertNoError(t, err)

		if summary.Skipped != 1 {
			t.Errorf("expected 1 skipped record, got %d", summary.Skipped)
		}
		if summary.Totals.Income != 1000 {
			t.Errorf("expected income 1000, got %d", summary.Totals.Income)
		}
	})

	t.Run("invalid_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetMonthlySummary(context.Background(), user.ID, engine.Period{Year: 2025, Month: 0})
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)

		_, err := svc.GetMonthlySummary(context.Background(), "0192f0c4-0000-7000-8000-000000000000", march)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestGetMonthlySummary_timezone(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)

	loc := time.FixedZone("UTC-3", -3*60*60)
	svc, err := NewSummaryService(db, SummaryOptions{
		Location: loc,
		Now:      func() time.Time { return time.Date(2025, time.March, 11, 1, 0, 0, 0, time.UTC) },
	})
	testutil.AssertNoError(t, err)

	summary, err := svc.GetMonthlySummary(context.Background(), user.ID, engine.Period{Year: 2025, Month: time.March})
	testutil.AssertNoError(t, err)

	if !summary.Today.Equal(engine.Date(2025, time.March, 10)) {
		t.Errorf("expected the local day 2025-03-10, got %s", summary.Today)
	}
}

func TestGetAnnualOverview(t *testing.T) {
	t.Run("aggregates_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)
		user := testutil.CreateTestUser(t, db)
		seedMarch(t, db, user.ID)

		overview, err := svc.GetAnnualOverview(context.Background(), user.ID, 2025)
		testutil.AssertNoError(t, err)

		if overview.Income != 500000 {
			t.Errorf("expected income 500000, got %d", overview.Income)
		}
		if overview.NetSaved != 30000 {
			t.Errorf("expected net saved 30000, got %d", overview.NetSaved)
		}
		if overview.CashFlow[time.March-1].Income != 500000 {
			t.Errorf("expected March income in the cash flow, got %d", overview.CashFlow[time.March-1].Income)
		}
		if overview.SavingsEvolution[time.December-1] != 30000 {
			t.Errorf("expected savings of 30000 by December, got %d", overview.SavingsEvolution[time.December-1])
		}
	})

	t.Run("invalid_year", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestSummaryService(t, db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.GetAnnualOverview(context.Background(), user.ID, 0)
		testutil.AssertAppError(t, err, "INVALID_PERIOD")
	})
}
