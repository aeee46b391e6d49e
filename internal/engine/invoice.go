package engine

import (
	"fmt"
	"sort"
	"time"

	"fintrack/internal/money"
)

// InvoiceRef links a synthesised fixed expense back to its card and the
// purchases it bills.
type InvoiceRef struct {
	CardRef   string
	Purchases []string
}

// Invoice is the bill of one credit card for one reference month.
type Invoice struct {
	ID     string
	Card   CreditCard
	Period Period

	// Purchases are billed when dated in (After, Until].
	After     time.Time
	Until     time.Time
	DueDate   time.Time
	Total     money.Cents
	Purchases []VariableExpense
}

// InvoiceID is the deterministic ID of a card's invoice for p.
func InvoiceID(cardID string, p Period) string {
	return fmt.Sprintf("invoice-%s-%d-%d", cardID, int(p.Month), p.Year)
}

// Window returns the billing window of card for p: purchases dated after the
// previous month's closing day and up to this month's closing day. Closing
// days past the end of a month fall on its last day.
func Window(card CreditCard, p Period) (after, until time.Time) {
	return p.Prev().Day(card.ClosingDay), p.Day(card.ClosingDay)
}

// ResolveInvoices builds the invoice of every card for p from the credit
// purchases in its window, regardless of the month filter. Cards whose
// window holds no spend produce no invoice. Order follows r.CreditCards.
func ResolveInvoices(r *Records, p Period) []Invoice {
	var invoices []Invoice
	for _, card := range r.CreditCards {
		if !card.valid() {
			continue
		}
		after, until := Window(card, p)

		var purchases []VariableExpense
		var total money.Cents
		for _, v := range r.Variable {
			if v.Method != PaymentCredit || v.CardRef != card.ID || !v.valid() {
				continue
			}
			if v.Date.After(after) && !v.Date.After(until) {
				purchases = append(purchases, v)
				total += v.Amount
			}
		}
		if total == 0 {
			continue
		}

		sort.SliceStable(purchases, func(i, j int) bool {
			if !purchases[i].Date.Equal(purchases[j].Date) {
				return purchases[i].Date.Before(purchases[j].Date)
			}
			return purchases[i].ID < purchases[j].ID
		})

		invoices = append(invoices, Invoice{
			ID:        InvoiceID(card.ID, p),
			Card:      card,
			Period:    p,
			After:     after,
			Until:     until,
			DueDate:   p.Day(card.DueDay),
			Total:     total,
			Purchases: purchases,
		})
	}
	return invoices
}

// AsFixedExpense returns the unpaid pseudo fixed expense that stands for the
// invoice in the month's bills.
func (inv Invoice) AsFixedExpense() FixedExpense {
	ids := make([]string, len(inv.Purchases))
	for i, v := range inv.Purchases {
		ids[i] = v.ID
	}
	return FixedExpense{
		Entry: Entry{
			ID:          inv.ID,
			Date:        inv.DueDate,
			Amount:      inv.Total,
			Description: fmt.Sprintf("Invoice «%s»", inv.Card.Name),
		},
		Invoice: &InvoiceRef{CardRef: inv.Card.ID, Purchases: ids},
	}
}

// MergeInvoices returns fixed plus one pseudo expense per invoice, re-sorted
// by date then ID. fixed is not modified.
func MergeInvoices(fixed []FixedExpense, invoices []Invoice) []FixedExpense {
	merged := make([]FixedExpense, 0, len(fixed)+len(invoices))
	merged = append(merged, fixed...)
	for _, inv := range invoices {
		merged = append(merged, inv.AsFixedExpense())
	}
	sortFixed(merged)
	return merged
}
