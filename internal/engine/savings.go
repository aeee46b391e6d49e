package engine

import "fintrack/internal/money"

// SavingsPosition places the month in the running savings balance.
type SavingsPosition struct {
	// BeforeMonth is the net of every movement dated before the month.
	BeforeMonth money.Cents
	Movement    money.Cents
	Current     money.Cents

	// AccountBalance is what stays in the checking account: income minus
	// bills, cash spending and money moved to savings.
	AccountBalance money.Cents

	// Patrimony adds the savings balance to the account balance.
	Patrimony money.Cents
}

func savingsPosition(r *Records, f Filtered, t Totals, x refs) SavingsPosition {
	start := f.Period.Start()
	var before money.Cents
	for _, s := range r.Savings {
		if s.valid() && s.Date.Before(start) {
			before += s.Signed()
		}
	}

	var cash money.Cents
	for _, v := range f.Variable {
		if !x.onCredit(v) {
			cash += v.Amount
		}
	}

	pos := SavingsPosition{
		BeforeMonth: before,
		Movement:    t.NetSavingsMovement,
		Current:     before + t.NetSavingsMovement,
	}
	pos.AccountBalance = t.Income - t.Fixed - cash - t.NetSavingsMovement
	pos.Patrimony = pos.AccountBalance + pos.Current
	return pos
}
