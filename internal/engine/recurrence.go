package engine

import (
	"errors"
	"fmt"
)

// PlanKind selects how a new record repeats.
type PlanKind string

const (
	PlanSingle       PlanKind = "single"
	PlanMonthly      PlanKind = "monthly"
	PlanInstallments PlanKind = "installments"
)

// MonthlyHorizon is how many occurrences a monthly plan materialises.
const MonthlyHorizon = 24

// MaxInstallments bounds an installment plan.
const MaxInstallments = 360

// ErrInvalidPlan is returned by Expand for plans it cannot honour.
var ErrInvalidPlan = errors.New("invalid recurrence plan")

// Plan describes the recurrence requested when a record is created.
// Installments is read only for PlanInstallments.
type Plan struct {
	Kind         PlanKind
	Installments int
}

// Count returns how many records the plan yields.
func (p Plan) Count() (int, error) {
	switch p.Kind {
	case PlanSingle, "":
		return 1, nil
	case PlanMonthly:
		return MonthlyHorizon, nil
	case PlanInstallments:
		if p.Installments < 1 || p.Installments > MaxInstallments {
			return 0, fmt.Errorf("%w: installments must be between 1 and %d", ErrInvalidPlan, MaxInstallments)
		}
		return p.Installments, nil
	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrInvalidPlan, p.Kind)
	}
}

// Expand turns a base record into the records a plan creates. A single
// plan yields base unchanged. Otherwise the siblings share base's GroupRef,
// start at base's date and advance one calendar month each. Installment
// siblings carry "i/N" info, monthly siblings are marked recurring, and
// every fixed expense after the first starts unpaid.
func Expand(base Record, plan Plan) ([]Record, error) {
	n, err := plan.Count()
	if err != nil {
		return nil, err
	}
	if plan.Kind == PlanSingle || plan.Kind == "" {
		return []Record{base}, nil
	}

	head := base.Header()
	if head.Date.IsZero() {
		return nil, fmt.Errorf("%w: a dated base record is required", ErrInvalidPlan)
	}
	if head.GroupRef == "" {
		return nil, fmt.Errorf("%w: a group reference is required", ErrInvalidPlan)
	}

	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		e := head
		e.Date = AddMonths(head.Date, i)
		switch plan.Kind {
		case PlanInstallments:
			e.InstallmentInfo = fmt.Sprintf("%d/%d", i+1, n)
		case PlanMonthly:
			e.Recurring = true
		}

		rec := base.withHeader(e)
		if fx, ok := rec.(FixedExpense); ok && i > 0 {
			fx.Paid = false
			rec = fx
		}
		out = append(out, rec)
	}
	return out, nil
}
