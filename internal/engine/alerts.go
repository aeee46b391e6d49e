package engine

import "time"

// DefaultDueSoonDays is how many days ahead an unpaid bill counts as due soon.
const DefaultDueSoonDays = 3

// UpcomingLimit caps the upcoming-bills list.
const UpcomingLimit = 5

// FixedView is a fixed expense (or invoice) with its due state as of today.
type FixedView struct {
	FixedExpense
	DaysUntilDue int
	DueSoon      bool
	Overdue      bool
}

// Alerts collects what the dashboard warns about.
type Alerts struct {
	DueSoon           []FixedView
	Overdue           []FixedView
	CriticalEnvelopes []Envelope
}

// DueStatus flags the unpaid fixed expenses due within window days of today
// and those already past due. Paid expenses are never flagged.
func DueStatus(fixed []FixedExpense, today time.Time, window int) []FixedView {
	views := make([]FixedView, len(fixed))
	for i, fx := range fixed {
		days := daysBetween(today, fx.Date)
		views[i] = FixedView{
			FixedExpense: fx,
			DaysUntilDue: days,
			DueSoon:      !fx.Paid && days >= 0 && days <= window,
			Overdue:      !fx.Paid && days < 0,
		}
	}
	return views
}

// Upcoming returns the first UpcomingLimit unpaid expenses from views,
// which are expected in date order.
func Upcoming(views []FixedView) []FixedView {
	var out []FixedView
	for _, v := range views {
		if v.Paid {
			continue
		}
		out = append(out, v)
		if len(out) == UpcomingLimit {
			break
		}
	}
	return out
}

func buildAlerts(views []FixedView, rec Reconciliation) Alerts {
	var a Alerts
	for _, v := range views {
		switch {
		case v.DueSoon:
			a.DueSoon = append(a.DueSoon, v)
		case v.Overdue:
			a.Overdue = append(a.Overdue, v)
		}
	}
	a.CriticalEnvelopes = rec.Critical()
	return a
}
