package engine

import (
	"sort"
)

// Filtered holds the records of one month, per category, in display order.
type Filtered struct {
	Period     Period
	Income     []Income
	Fixed      []FixedExpense
	Variable   []VariableExpense
	Provisions []Provision
	Savings    []SavingsMovement

	// Skipped counts malformed records (missing date or negative amount)
	// across the whole input, not only the selected month.
	Skipped int
}

// FilterMonth selects the records dated in p. Income, provisions and savings
// keep input order; fixed expenses are sorted by date then ID; variable
// expenses by ID descending. The input is not modified.
func FilterMonth(r *Records, p Period) Filtered {
	f := Filtered{Period: p}

	for _, v := range r.Income {
		if keep(v.Entry, p, &f.Skipped) {
			f.Income = append(f.Income, v)
		}
	}
	for _, v := range r.Fixed {
		if keep(v.Entry, p, &f.Skipped) {
			f.Fixed = append(f.Fixed, v)
		}
	}
	for _, v := range r.Variable {
		if keep(v.Entry, p, &f.Skipped) {
			f.Variable = append(f.Variable, v)
		}
	}
	for _, v := range r.Provisions {
		if keep(v.Entry, p, &f.Skipped) {
			f.Provisions = append(f.Provisions, v)
		}
	}
	for _, v := range r.Savings {
		if keep(v.Entry, p, &f.Skipped) {
			f.Savings = append(f.Savings, v)
		}
	}

	sortFixed(f.Fixed)
	sort.SliceStable(f.Variable, func(i, j int) bool {
		return f.Variable[i].ID > f.Variable[j].ID
	})
	return f
}

func keep(e Entry, p Period, skipped *int) bool {
	if !e.valid() {
		*skipped++
		return false
	}
	return p.Contains(e.Date)
}

func sortFixed(fixed []FixedExpense) {
	sort.SliceStable(fixed, func(i, j int) bool {
		a, b := fixed[i], fixed[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.ID < b.ID
	})
}
