package engine

import (
	"reflect"
	"testing"
	"time"

	"fintrack/internal/money"
)

// --- helpers ---

func day(y int, m time.Month, d int) time.Time { return Date(y, m, d) }

// units converts whole currency units to cents.
func units(n int64) money.Cents { return money.Cents(n * 100) }

var (
	march2025 = Period{Year: 2025, Month: time.March}
	foodTag   = Tag{ID: "tag-food", Name: "Food", Color: "#ff0000"}
	funTag    = Tag{ID: "tag-fun", Name: "Fun", Color: "#00ff00"}
)

func income(id string, d time.Time, amount money.Cents) Income {
	return Income{Entry: Entry{ID: id, Date: d, Amount: amount}}
}

func fixed(id string, d time.Time, amount money.Cents, paid bool) FixedExpense {
	return FixedExpense{Entry: Entry{ID: id, Date: d, Amount: amount}, Paid: paid}
}

func debit(id string, d time.Time, amount money.Cents, tag string) VariableExpense {
	return VariableExpense{Entry: Entry{ID: id, Date: d, Amount: amount, TagRef: tag}, Method: PaymentDebit}
}

func credit(id string, d time.Time, amount money.Cents, tag, card string) VariableExpense {
	return VariableExpense{Entry: Entry{ID: id, Date: d, Amount: amount, TagRef: tag}, Method: PaymentCredit, CardRef: card}
}

func provision(id string, d time.Time, amount money.Cents, tag string) Provision {
	return Provision{Entry: Entry{ID: id, Date: d, Amount: amount, TagRef: tag}}
}

func saving(id string, d time.Time, amount money.Cents, dir SavingsDirection) SavingsMovement {
	return SavingsMovement{Entry: Entry{ID: id, Date: d, Amount: amount}, Direction: dir}
}

// scenarioA is one month with income, a bill and a Food envelope.
func scenarioA(foodSpend money.Cents) *Records {
	return &Records{
		Income:     []Income{income("i1", day(2025, 3, 1), units(5000))},
		Fixed:      []FixedExpense{fixed("f1", day(2025, 3, 5), units(1200), false)},
		Variable:   []VariableExpense{debit("v1", day(2025, 3, 10), foodSpend, foodTag.ID)},
		Provisions: []Provision{provision("p1", day(2025, 3, 1), units(500), foodTag.ID)},
		Tags:       []Tag{foodTag},
	}
}

func compute(r *Records, today time.Time) Summary {
	return Compute(r, march2025, Options{Today: today})
}

// --- scenarios ---

func TestCompute_ScenarioA(t *testing.T) {
	s := compute(scenarioA(units(300)), day(2025, 3, 1))

	if s.Totals.EffectiveProvisionedSpend != units(500) {
		t.Errorf("expected effective provisioned spend 500.00, got %s", s.Totals.EffectiveProvisionedSpend)
	}
	if s.Totals.UnprovisionedVariableSpend != 0 {
		t.Errorf("expected no unprovisioned spend, got %s", s.Totals.UnprovisionedVariableSpend)
	}
	if s.Totals.ProjectedSurplus != units(3300) {
		t.Errorf("expected projected surplus 3300.00, got %s", s.Totals.ProjectedSurplus)
	}
	if s.Totals.PendingCommitments != units(1400) {
		t.Errorf("expected pending commitments 1400.00, got %s", s.Totals.PendingCommitments)
	}
	if len(s.Envelopes) != 1 || s.Envelopes[0].Remaining != units(200) {
		t.Fatalf("expected one envelope with 200.00 remaining, got %+v", s.Envelopes)
	}
	if s.Envelopes[0].Critical {
		t.Error("envelope at 60% should not be critical")
	}
}

func TestCompute_ScenarioB(t *testing.T) {
	s := compute(scenarioA(units(700)), day(2025, 3, 1))

	env := s.Envelopes[0]
	if env.Effective != units(700) {
		t.Errorf("expected effective spend 700.00, got %s", env.Effective)
	}
	if env.Remaining != 0 {
		t.Errorf("expected remaining 0, got %s", env.Remaining)
	}
	if !env.Critical {
		t.Error("expected envelope to be critical")
	}
	if len(s.Alerts.CriticalEnvelopes) != 1 {
		t.Errorf("expected 1 critical envelope alert, got %d", len(s.Alerts.CriticalEnvelopes))
	}
	if env.Usage.String() != "140" {
		t.Errorf("expected usage 140%%, got %s", env.Usage)
	}
}

func TestCompute_ScenarioC(t *testing.T) {
	card := CreditCard{ID: "card-1", Name: "Visa", ClosingDay: 5, DueDay: 15}
	r := &Records{
		CreditCards: []CreditCard{card},
		Variable: []VariableExpense{
			credit("v1", day(2025, 3, 3), units(200), "", card.ID),
			credit("v2", day(2025, 3, 10), units(50), "", card.ID),
		},
	}

	s := compute(r, day(2025, 3, 1))

	if len(s.Invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(s.Invoices))
	}
	inv := s.Invoices[0]
	if inv.Total != units(200) {
		t.Errorf("expected invoice total 200.00, got %s", inv.Total)
	}
	if !inv.DueDate.Equal(day(2025, 3, 15)) {
		t.Errorf("expected due date 2025-03-15, got %s", inv.DueDate)
	}
	if len(inv.Purchases) != 1 || inv.Purchases[0].ID != "v1" {
		t.Errorf("expected only v1 in the invoice, got %+v", inv.Purchases)
	}

	if len(s.Fixed) != 1 {
		t.Fatalf("expected the invoice merged into fixed expenses, got %d", len(s.Fixed))
	}
	bill := s.Fixed[0]
	if bill.ID != "invoice-card-1-3-2025" || bill.Description != "Invoice «Visa»" || bill.Paid {
		t.Errorf("unexpected invoice pseudo expense: %+v", bill.FixedExpense)
	}
	if bill.Invoice == nil || bill.Invoice.CardRef != card.ID {
		t.Error("expected invoice back reference to the card")
	}
	if s.Totals.Fixed != units(200) || s.Totals.PendingCommitments != units(200) {
		t.Errorf("expected the invoice in fixed totals, got fixed=%s pending=%s",
			s.Totals.Fixed, s.Totals.PendingCommitments)
	}
	// Untagged purchases count as unprovisioned whatever the payment method.
	if s.Totals.UnprovisionedVariableSpend != units(250) {
		t.Errorf("expected untagged credit purchases as unprovisioned, got %s", s.Totals.UnprovisionedVariableSpend)
	}
}

func TestCompute_ScenarioD(t *testing.T) {
	r := &Records{
		Provisions: []Provision{provision("p1", day(2025, 3, 1), units(300), "")},
		Variable:   []VariableExpense{debit("v1", day(2025, 3, 2), units(120), "")},
	}

	s := compute(r, day(2025, 3, 1))

	if s.Totals.EffectiveProvisionedSpend != units(300) {
		t.Errorf("expected 300.00 effective, got %s", s.Totals.EffectiveProvisionedSpend)
	}
	if s.Totals.PendingCommitments != units(300) {
		t.Errorf("expected 300.00 pending, got %s", s.Totals.PendingCommitments)
	}
	if s.Envelopes[0].Linked() {
		t.Error("provision without tag should be unlinked")
	}
	if s.Totals.UnprovisionedVariableSpend != units(120) {
		t.Errorf("expected untagged spend as unprovisioned, got %s", s.Totals.UnprovisionedVariableSpend)
	}
}

// --- properties ---

func richRecords() *Records {
	card := CreditCard{ID: "card-1", Name: "Visa", ClosingDay: 28, DueDay: 10}
	return &Records{
		Income: []Income{
			income("i1", day(2025, 3, 1), units(4000)),
			income("i2", day(2025, 3, 15), units(1000)),
		},
		Fixed: []FixedExpense{
			fixed("f2", day(2025, 3, 5), units(100), true),
			fixed("f1", day(2025, 3, 5), units(900), false),
			fixed("f0", day(2025, 2, 5), units(900), false),
		},
		Variable: []VariableExpense{
			debit("v1", day(2025, 3, 2), units(80), foodTag.ID),
			debit("v3", day(2025, 3, 4), units(40), funTag.ID),
			credit("v2", day(2025, 3, 3), units(60), foodTag.ID, card.ID),
			debit("v4", day(2025, 3, 6), units(10), "ghost"),
		},
		Provisions: []Provision{
			provision("p1", day(2025, 3, 1), units(100), foodTag.ID),
			provision("p2", day(2025, 3, 1), units(50), ""),
		},
		Savings: []SavingsMovement{
			saving("s0", day(2025, 1, 10), units(1000), SavingsDeposit),
			saving("s1", day(2025, 3, 20), units(300), SavingsDeposit),
			saving("s2", day(2025, 3, 21), units(50), SavingsWithdrawal),
		},
		Tags:        []Tag{foodTag, funTag},
		CreditCards: []CreditCard{card},
	}
}

func TestCompute_Idempotent(t *testing.T) {
	r := richRecords()
	first := compute(r, day(2025, 3, 4))
	second := compute(r, day(2025, 3, 4))
	if !reflect.DeepEqual(first, second) {
		t.Error("two computations over the same input differ")
	}
}

func TestCompute_DoesNotMutateInput(t *testing.T) {
	r := richRecords()
	before := richRecords()
	compute(r, day(2025, 3, 4))
	if !reflect.DeepEqual(r, before) {
		t.Error("Compute modified its input")
	}
}

func TestCompute_SumInvariants(t *testing.T) {
	s := compute(richRecords(), day(2025, 3, 4))
	tot := s.Totals

	if tot.CommittedSpend != tot.Fixed+tot.UnprovisionedVariableSpend+tot.EffectiveProvisionedSpend {
		t.Error("committed spend is not the sum of its parts")
	}
	if tot.ProjectedSurplus != tot.Income-tot.CommittedSpend-tot.NetSavingsMovement {
		t.Error("projected surplus does not follow from the totals")
	}

	var fixedSum money.Cents
	for _, f := range s.Fixed {
		fixedSum += f.Amount
	}
	if fixedSum != tot.Fixed {
		t.Errorf("fixed total %s does not match its rows %s", tot.Fixed, fixedSum)
	}
	if tot.Income != units(5000) {
		t.Errorf("expected income 5000.00, got %s", tot.Income)
	}
	if tot.NetSavingsMovement != units(250) {
		t.Errorf("expected net savings 250.00, got %s", tot.NetSavingsMovement)
	}
	for _, env := range s.Envelopes {
		if env.Effective < env.Provision.Amount || env.Effective < env.Spent {
			t.Errorf("envelope %s breaks the effective floor: %+v", env.Provision.ID, env)
		}
	}
}

func TestCompute_CreditAndUnresolvedRefs(t *testing.T) {
	s := compute(richRecords(), day(2025, 3, 4))

	// Food envelope: 80 debit counts, 60 on credit does not.
	food := s.Envelopes[0]
	if food.Spent != units(80) {
		t.Errorf("expected Food spent 80.00, got %s", food.Spent)
	}
	// Fun (not provisioned) 40 + ghost tag 10 are unprovisioned. The Food
	// credit purchase is neither envelope spend nor unprovisioned.
	if s.Totals.UnprovisionedVariableSpend != units(50) {
		t.Errorf("expected unprovisioned 50.00, got %s", s.Totals.UnprovisionedVariableSpend)
	}
	// Chart groups all variable spend by resolvable tag, including credit.
	if len(s.Chart) != 2 {
		t.Fatalf("expected 2 chart entries, got %+v", s.Chart)
	}
	if s.Chart[0].Label != "Food" || s.Chart[0].Amount != units(140) || s.Chart[0].Color != "#ff0000" {
		t.Errorf("unexpected first chart entry %+v", s.Chart[0])
	}
	if s.Chart[1].Label != "Fun" || s.Chart[1].Amount != units(40) {
		t.Errorf("unexpected second chart entry %+v", s.Chart[1])
	}
}

func TestCompute_UntaggedCreditPurchaseIsUnprovisioned(t *testing.T) {
	card := CreditCard{ID: "card-1", Name: "Visa", ClosingDay: 25, DueDay: 5}
	r := &Records{
		CreditCards: []CreditCard{card},
		Income:      []Income{income("i1", day(2025, 3, 1), units(1000))},
		Variable:    []VariableExpense{credit("v1", day(2025, 3, 10), units(100), "", card.ID)},
	}

	s := compute(r, day(2025, 3, 1))

	if s.Totals.UnprovisionedVariableSpend != units(100) {
		t.Errorf("expected unprovisioned 100.00, got %s", s.Totals.UnprovisionedVariableSpend)
	}
	if s.Totals.Fixed != units(100) {
		t.Errorf("expected the invoice in fixed, got %s", s.Totals.Fixed)
	}
	if s.Totals.ProjectedSurplus != units(800) {
		t.Errorf("expected surplus 800.00, got %s", s.Totals.ProjectedSurplus)
	}
}

func TestCompute_CustomTagResolver(t *testing.T) {
	r := &Records{
		Tags: []Tag{foodTag, funTag},
		Variable: []VariableExpense{
			debit("v1", day(2025, 3, 2), units(80), foodTag.ID),
			debit("v2", day(2025, 3, 3), units(30), "legacy-fun"),
		},
		Provisions: []Provision{
			provision("p1", day(2025, 3, 1), units(100), foodTag.ID),
			provision("p2", day(2025, 3, 1), units(50), "legacy-fun"),
		},
	}
	// Food is hidden even though Records.Tags has it; the legacy ref maps to Fun.
	resolve := func(id string) (Tag, bool) {
		if id == "legacy-fun" {
			return funTag, true
		}
		return Tag{}, false
	}

	s := Compute(r, march2025, Options{Today: day(2025, 3, 1), ResolveTag: resolve})

	food, fun := s.Envelopes[0], s.Envelopes[1]
	if food.Linked() || food.Spent != 0 || food.Effective != units(100) {
		t.Errorf("expected the hidden tag's envelope unlinked at its ceiling, got %+v", food)
	}
	if !fun.Linked() || fun.Tag.ID != funTag.ID || fun.Spent != units(30) || fun.Remaining != units(20) {
		t.Errorf("expected the mapped envelope to track Fun, got %+v", fun)
	}
	if s.Totals.UnprovisionedVariableSpend != units(80) {
		t.Errorf("expected hidden tag spend as unprovisioned, got %s", s.Totals.UnprovisionedVariableSpend)
	}
	if len(s.Chart) != 1 || s.Chart[0].TagID != funTag.ID || s.Chart[0].Amount != units(30) {
		t.Errorf("expected only Fun in the chart, got %+v", s.Chart)
	}
}

func TestCompute_CreditOnMissingCardCountsAsCash(t *testing.T) {
	r := scenarioA(units(100))
	r.Variable = append(r.Variable, credit("v9", day(2025, 3, 11), units(350), foodTag.ID, "deleted-card"))

	s := compute(r, day(2025, 3, 1))

	if s.Envelopes[0].Spent != units(450) {
		t.Errorf("expected purchase on a missing card to count in the envelope, got %s", s.Envelopes[0].Spent)
	}
	if len(s.Invoices) != 0 {
		t.Errorf("expected no invoices, got %d", len(s.Invoices))
	}
}

func TestCompute_InvoiceSuppression(t *testing.T) {
	r := &Records{
		CreditCards: []CreditCard{{ID: "card-1", Name: "Visa", ClosingDay: 5, DueDay: 15}},
		Variable: []VariableExpense{
			credit("v1", day(2025, 4, 20), units(10), "", "card-1"),
			debit("v2", day(2025, 3, 3), units(10), ""),
		},
	}
	s := compute(r, day(2025, 3, 1))
	if len(s.Invoices) != 0 {
		t.Errorf("expected no invoice for an empty window, got %+v", s.Invoices)
	}
	for _, f := range s.Fixed {
		if f.Invoice != nil {
			t.Error("no invoice expense should be merged")
		}
	}
}

func TestCompute_DueFlags(t *testing.T) {
	r := &Records{
		Fixed: []FixedExpense{
			fixed("a", day(2025, 3, 1), units(10), false),
			fixed("b", day(2025, 3, 3), units(10), true),
			fixed("c", day(2025, 3, 5), units(10), false),
			fixed("d", day(2025, 3, 6), units(10), false),
			fixed("e", day(2025, 3, 2), units(10), false),
		},
	}

	s := compute(r, day(2025, 3, 2))

	flags := map[string][2]bool{}
	for _, f := range s.Fixed {
		flags[f.ID] = [2]bool{f.DueSoon, f.Overdue}
	}
	want := map[string][2]bool{
		"a": {false, true},
		"b": {false, false},
		"c": {true, false},
		"d": {false, false},
		"e": {true, false},
	}
	if !reflect.DeepEqual(flags, want) {
		t.Errorf("due flags = %v, want %v", flags, want)
	}
	if len(s.Alerts.DueSoon) != 2 || len(s.Alerts.Overdue) != 1 {
		t.Errorf("expected 2 due soon and 1 overdue alerts, got %d and %d",
			len(s.Alerts.DueSoon), len(s.Alerts.Overdue))
	}
	if len(s.Upcoming) != 4 || s.Upcoming[0].ID != "a" {
		t.Errorf("expected 4 unpaid upcoming bills starting with a, got %+v", s.Upcoming)
	}
}

func TestCompute_DueSoonWindowOption(t *testing.T) {
	r := &Records{Fixed: []FixedExpense{fixed("a", day(2025, 3, 10), units(10), false)}}

	s := Compute(r, march2025, Options{Today: day(2025, 3, 1), DueSoonDays: 10})
	if !s.Fixed[0].DueSoon {
		t.Error("expected bill 9 days away to be due soon with a 10 day window")
	}
	s = Compute(r, march2025, Options{Today: day(2025, 3, 1)})
	if s.Fixed[0].DueSoon {
		t.Error("expected bill 9 days away not to be due soon with the default window")
	}
}

func TestCompute_SkipsMalformedRecords(t *testing.T) {
	r := scenarioA(units(300))
	r.Fixed = append(r.Fixed, fixed("undated", time.Time{}, units(999), false))
	r.Income = append(r.Income, income("negative", day(2025, 3, 2), -1))

	s := compute(r, day(2025, 3, 1))

	if s.Skipped != 2 {
		t.Errorf("expected 2 skipped records, got %d", s.Skipped)
	}
	if s.Totals.Fixed != units(1200) || s.Totals.Income != units(5000) {
		t.Errorf("malformed records leaked into totals: %+v", s.Totals)
	}
}

func TestCompute_SavingsPosition(t *testing.T) {
	s := compute(richRecords(), day(2025, 3, 4))
	pos := s.Position

	if pos.BeforeMonth != units(1000) {
		t.Errorf("expected 1000.00 saved before March, got %s", pos.BeforeMonth)
	}
	if pos.Movement != units(250) || pos.Current != units(1250) {
		t.Errorf("unexpected movement/current: %+v", pos)
	}
	// 5000 income - 1060 bills (invoice included) - 130 cash spend - 250 saved
	if pos.AccountBalance != units(3560) {
		t.Errorf("expected account balance 3560.00, got %s", pos.AccountBalance)
	}
	if pos.Patrimony != units(4810) {
		t.Errorf("expected patrimony 4810.00, got %s", pos.Patrimony)
	}
}

func TestCompute_InvalidInvocationPanics(t *testing.T) {
	cases := map[string]func(){
		"nil records":   func() { Compute(nil, march2025, Options{Today: day(2025, 3, 1)}) },
		"invalid month": func() { Compute(&Records{}, Period{Year: 2025, Month: 13}, Options{Today: day(2025, 3, 1)}) },
		"missing today": func() { Compute(&Records{}, march2025, Options{}) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestRecords_Add(t *testing.T) {
	var r Records
	for _, rec := range []Record{
		income("i", day(2025, 3, 1), 1),
		fixed("f", day(2025, 3, 1), 1, false),
		debit("v", day(2025, 3, 1), 1, ""),
		provision("p", day(2025, 3, 1), 1, ""),
		saving("s", day(2025, 3, 1), 1, SavingsDeposit),
	} {
		r.Add(rec)
	}
	if len(r.Income) != 1 || len(r.Fixed) != 1 || len(r.Variable) != 1 || len(r.Provisions) != 1 || len(r.Savings) != 1 {
		t.Errorf("records not dispatched to their categories: %+v", r)
	}
}
