package engine

import (
	"sort"
	"strings"

	"fintrack/internal/money"
)

// Totals are the month's headline numbers.
type Totals struct {
	Income   money.Cents
	Fixed    money.Cents
	Variable money.Cents

	// NetSavingsMovement is deposits minus withdrawals.
	NetSavingsMovement         money.Cents
	UnprovisionedVariableSpend money.Cents
	EffectiveProvisionedSpend  money.Cents
	CommittedSpend             money.Cents
	ProjectedSurplus           money.Cents
	PendingCommitments         money.Cents
}

// Project computes the totals of a month whose fixed expenses already
// include its invoices.
func Project(f Filtered, rec Reconciliation) Totals {
	var t Totals
	for _, v := range f.Income {
		t.Income += v.Amount
	}
	var unpaid money.Cents
	for _, v := range f.Fixed {
		t.Fixed += v.Amount
		if !v.Paid {
			unpaid += v.Amount
		}
	}
	for _, v := range f.Variable {
		t.Variable += v.Amount
	}
	for _, v := range f.Savings {
		t.NetSavingsMovement += v.Signed()
	}

	t.UnprovisionedVariableSpend = rec.TotalUnprovisionedVariableSpend
	t.EffectiveProvisionedSpend = rec.TotalEffectiveProvisionedSpend
	t.CommittedSpend = t.Fixed + t.UnprovisionedVariableSpend + t.EffectiveProvisionedSpend
	t.ProjectedSurplus = t.Income - t.CommittedSpend - t.NetSavingsMovement
	t.PendingCommitments = unpaid + rec.TotalRemaining
	return t
}

// ChartEntry is one slice of the spending-by-tag chart.
type ChartEntry struct {
	TagID  string
	Label  string
	Color  string
	Amount money.Cents
}

// ChartSeries groups variable expenses by resolved tag and sorts the groups
// by amount, largest first; equal amounts are ordered by label. Untagged
// expenses and expenses whose tag cannot be resolved are left out.
func ChartSeries(variable []VariableExpense, resolve TagResolver) []ChartEntry {
	index := make(map[string]int)
	var series []ChartEntry
	for _, v := range variable {
		tag, ok := resolve(v.TagRef)
		if !ok {
			continue
		}
		i, seen := index[tag.ID]
		if !seen {
			i = len(series)
			index[tag.ID] = i
			series = append(series, ChartEntry{TagID: tag.ID, Label: tag.Name, Color: tag.Color})
		}
		series[i].Amount += v.Amount
	}

	sort.SliceStable(series, func(i, j int) bool {
		a, b := series[i], series[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		if c := strings.Compare(a.Label, b.Label); c != 0 {
			return c < 0
		}
		return a.TagID < b.TagID
	})
	return series
}
