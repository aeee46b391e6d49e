package engine

import (
	"fmt"
	"time"
)

// Options tune a computation. Today is required.
type Options struct {
	Today time.Time

	// DueSoonDays defaults to DefaultDueSoonDays when zero.
	DueSoonDays int

	// ResolveTag defaults to an index over Records.Tags.
	ResolveTag TagResolver
}

// Summary is everything the dashboard shows for one month.
type Summary struct {
	Period Period
	Today  time.Time

	Income     []Income
	Fixed      []FixedView // includes invoices, date then ID order
	Variable   []VariableExpense
	Provisions []Provision
	Savings    []SavingsMovement

	Invoices  []Invoice
	Envelopes []Envelope
	Totals    Totals
	Chart     []ChartEntry
	Alerts    Alerts
	Upcoming  []FixedView
	Position  SavingsPosition

	// Skipped counts records left out because they were malformed.
	Skipped int
}

// Compute runs the whole pipeline for p: month filter, invoice resolution,
// envelope reconciliation, totals and chart. It panics on a nil snapshot,
// an invalid period or a missing today, which callers validate upfront.
func Compute(r *Records, p Period, opts Options) Summary {
	if r == nil {
		panic("engine: nil records")
	}
	if err := p.Validate(); err != nil {
		panic(fmt.Sprintf("engine: %v", err))
	}
	if opts.Today.IsZero() {
		panic("engine: today is required")
	}
	window := opts.DueSoonDays
	if window <= 0 {
		window = DefaultDueSoonDays
	}

	x := newRefs(r, opts.ResolveTag)
	today := Civil(opts.Today)

	f := FilterMonth(r, p)
	invoices := ResolveInvoices(r, p)
	f.Fixed = MergeInvoices(f.Fixed, invoices)

	rec := reconcile(f, x)
	totals := Project(f, rec)
	views := DueStatus(f.Fixed, today, window)

	return Summary{
		Period:     p,
		Today:      today,
		Income:     f.Income,
		Fixed:      views,
		Variable:   f.Variable,
		Provisions: f.Provisions,
		Savings:    f.Savings,
		Invoices:   invoices,
		Envelopes:  rec.Envelopes,
		Totals:     totals,
		Chart:      ChartSeries(f.Variable, x.tag),
		Alerts:     buildAlerts(views, rec),
		Upcoming:   Upcoming(views),
		Position:   savingsPosition(r, f, totals, x),
		Skipped:    f.Skipped,
	}
}
