package engine

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/money"
)

// Envelope is a provision reconciled against the month's spending.
type Envelope struct {
	Provision Provision
	Tag       *Tag // nil for unlinked provisions (plain set-asides)

	// Spent sums the non-credit variable expenses sharing the envelope's tag.
	Spent money.Cents

	// Effective is what the envelope weighs in the month's commitments:
	// the ceiling, or the spend when it overran the ceiling.
	Effective money.Cents

	// Remaining is what is still available under the ceiling, never negative.
	Remaining money.Cents

	Usage    decimal.Decimal
	Critical bool
}

// Linked reports whether the envelope tracks a tag.
func (e Envelope) Linked() bool { return e.Tag != nil }

// Reconciliation is the outcome of matching provisions with spending.
type Reconciliation struct {
	Envelopes                       []Envelope
	TotalEffectiveProvisionedSpend  money.Cents
	TotalUnprovisionedVariableSpend money.Cents
	TotalRemaining                  money.Cents
}

// CriticalNumerator and CriticalDenominator define the share of the ceiling
// past which a linked envelope is flagged critical.
const (
	CriticalNumerator   = 9
	CriticalDenominator = 10
)

// Reconcile matches the month's provisions with its variable expenses.
// Purchases on a known card are billed through invoices and never count
// towards an envelope's spend. Every expense whose tag is not linked to a
// provision counts as unprovisioned spend, whatever its payment method.
func Reconcile(f Filtered, r *Records, resolve TagResolver) Reconciliation {
	return reconcile(f, newRefs(r, resolve))
}

func reconcile(f Filtered, x refs) Reconciliation {
	spentByTag := make(map[string]money.Cents)
	for _, v := range f.Variable {
		if x.onCredit(v) {
			continue
		}
		if tag := x.tagOf(v.Entry); tag != "" {
			spentByTag[tag] += v.Amount
		}
	}

	var rec Reconciliation
	linked := make(map[string]bool)
	for _, p := range f.Provisions {
		env := Envelope{Provision: p}
		if t, ok := x.tag(p.TagRef); ok {
			tag := t
			env.Tag = &tag
			linked[t.ID] = true

			env.Spent = spentByTag[t.ID]
			env.Effective = money.Max(p.Amount, env.Spent)
			env.Remaining = money.Max(p.Amount-env.Spent, 0)
			env.Usage = money.Percent(env.Spent, p.Amount, 1)
			env.Critical = p.Amount > 0 &&
				money.Exceeds(env.Spent, p.Amount, CriticalNumerator, CriticalDenominator)
		} else {
			env.Effective = p.Amount
			env.Remaining = p.Amount
			env.Usage = decimal.Zero
		}

		rec.TotalEffectiveProvisionedSpend += env.Effective
		rec.TotalRemaining += env.Remaining
		rec.Envelopes = append(rec.Envelopes, env)
	}

	for _, v := range f.Variable {
		if tag := x.tagOf(v.Entry); tag == "" || !linked[tag] {
			rec.TotalUnprovisionedVariableSpend += v.Amount
		}
	}
	return rec
}

// Critical returns the envelopes flagged critical, in provision order.
func (rec Reconciliation) Critical() []Envelope {
	var out []Envelope
	for _, e := range rec.Envelopes {
		if e.Critical {
			out = append(out, e)
		}
	}
	return out
}
