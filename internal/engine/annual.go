package engine

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/money"
)

// MonthFlow is one month of the annual cash flow.
type MonthFlow struct {
	Month    time.Month
	Income   money.Cents
	Fixed    money.Cents
	Variable money.Cents
	Net      money.Cents
}

// YearOverview aggregates a calendar year.
type YearOverview struct {
	Year        int
	Income      money.Cents
	Outflow     money.Cents
	Balance     money.Cents
	NetSaved    money.Cents
	SavingsRate decimal.Decimal

	CashFlow     [12]MonthFlow
	Distribution []ChartEntry

	// SavingsEvolution is the savings balance at the end of each month,
	// carried over from previous years.
	SavingsEvolution [12]money.Cents

	Skipped int
}

// ComputeYear builds the annual overview. When year is the current year,
// outflows dated after today are left out of the yearly totals so planned
// bills do not count as spent; the monthly cash flow shows the whole year.
func ComputeYear(r *Records, year int, today time.Time, resolve TagResolver) YearOverview {
	if r == nil {
		panic("engine: nil records")
	}
	if year < 1 || year > 9999 {
		panic("engine: invalid year")
	}
	if resolve == nil {
		resolve = IndexTags(r.Tags)
	}

	ov := YearOverview{Year: year}
	for i := range ov.CashFlow {
		ov.CashFlow[i].Month = time.Month(i + 1)
	}
	today = Civil(today)
	limitToToday := today.Year() == year
	counts := func(d time.Time) bool {
		return !limitToToday || !d.After(today)
	}

	for _, v := range r.Income {
		if !v.valid() {
			ov.Skipped++
			continue
		}
		if v.Date.Year() == year {
			ov.Income += v.Amount
			ov.CashFlow[v.Date.Month()-1].Income += v.Amount
		}
	}
	for _, v := range r.Fixed {
		if !v.valid() {
			ov.Skipped++
			continue
		}
		if v.Date.Year() == year {
			ov.CashFlow[v.Date.Month()-1].Fixed += v.Amount
			if counts(v.Date) {
				ov.Outflow += v.Amount
			}
		}
	}
	var spent []VariableExpense
	for _, v := range r.Variable {
		if !v.valid() {
			ov.Skipped++
			continue
		}
		if v.Date.Year() == year {
			ov.CashFlow[v.Date.Month()-1].Variable += v.Amount
			spent = append(spent, v)
			if counts(v.Date) {
				ov.Outflow += v.Amount
			}
		}
	}

	var carried money.Cents
	var byMonth [12]money.Cents
	for _, s := range r.Savings {
		if !s.valid() {
			ov.Skipped++
			continue
		}
		switch {
		case s.Date.Year() < year:
			carried += s.Signed()
		case s.Date.Year() == year:
			byMonth[s.Date.Month()-1] += s.Signed()
			ov.NetSaved += s.Signed()
		}
	}
	running := carried
	for i := range byMonth {
		running += byMonth[i]
		ov.SavingsEvolution[i] = running
	}

	for i := range ov.CashFlow {
		m := &ov.CashFlow[i]
		m.Net = m.Income - m.Fixed - m.Variable
	}
	ov.Balance = ov.Income - ov.Outflow
	ov.SavingsRate = money.Percent(ov.NetSaved, ov.Income, 1)

	for _, e := range ChartSeries(spent, resolve) {
		if e.Amount > 0 {
			ov.Distribution = append(ov.Distribution, e)
		}
	}
	return ov
}
