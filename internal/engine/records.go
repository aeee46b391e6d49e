// Package engine is the monthly aggregation core: a pure computation from
// a snapshot of records, a reference month and an injected "today" to the
// filtered views, credit card invoices, envelope consumption, summary totals
// and chart series shown on the dashboard.
//
// Nothing in this package performs I/O, logs, or keeps state between calls.
package engine

import (
	"fmt"
	"time"

	"fintrack/internal/money"
)

// Category identifies one of the five record kinds.
type Category string

const (
	CategoryIncome          Category = "income"
	CategoryFixedExpense    Category = "fixed_expense"
	CategoryVariableExpense Category = "variable_expense"
	CategoryProvision       Category = "provision"
	CategorySavings         Category = "savings"
)

// PaymentMethod is how a variable expense was paid.
type PaymentMethod string

const (
	PaymentDebit  PaymentMethod = "debit"
	PaymentCredit PaymentMethod = "credit"
)

// SavingsDirection tells whether a savings movement adds to or draws from savings.
type SavingsDirection string

const (
	SavingsDeposit    SavingsDirection = "deposit"
	SavingsWithdrawal SavingsDirection = "withdrawal"
)

// Entry holds the fields every record carries. TagRef, GroupRef are weak
// references: an empty or unresolvable value means "none".
type Entry struct {
	ID              string
	Date            time.Time
	Amount          money.Cents
	Description     string
	TagRef          string
	GroupRef        string
	InstallmentInfo string
	Recurring       bool
}

// Header returns the common fields.
func (e Entry) Header() Entry { return e }

// valid reports whether the entry can take part in month-based views.
func (e Entry) valid() bool {
	return !e.Date.IsZero() && e.Amount >= 0
}

// Record is implemented by exactly the five category types below.
type Record interface {
	Category() Category
	Header() Entry
	withHeader(Entry) Record
}

// Income is money received.
type Income struct {
	Entry
}

// FixedExpense is a scheduled bill. Invoice is set only on the pseudo
// expenses synthesised from credit card invoices.
type FixedExpense struct {
	Entry
	Paid    bool
	Invoice *InvoiceRef
}

// VariableExpense is a discretionary purchase. CardRef is meaningful only
// when Method is PaymentCredit.
type VariableExpense struct {
	Entry
	Method  PaymentMethod
	CardRef string
}

// Provision is a budget envelope: a spending ceiling for the month, linked
// to a tag or, without one, a plain set-aside.
type Provision struct {
	Entry
}

// SavingsMovement moves money into or out of savings.
type SavingsMovement struct {
	Entry
	Direction SavingsDirection
}

func (Income) Category() Category          { return CategoryIncome }
func (FixedExpense) Category() Category    { return CategoryFixedExpense }
func (VariableExpense) Category() Category { return CategoryVariableExpense }
func (Provision) Category() Category       { return CategoryProvision }
func (SavingsMovement) Category() Category { return CategorySavings }

func (r Income) withHeader(e Entry) Record          { r.Entry = e; return r }
func (r FixedExpense) withHeader(e Entry) Record    { r.Entry = e; return r }
func (r VariableExpense) withHeader(e Entry) Record { r.Entry = e; return r }
func (r Provision) withHeader(e Entry) Record       { r.Entry = e; return r }
func (r SavingsMovement) withHeader(e Entry) Record { r.Entry = e; return r }

// Signed returns the movement's contribution to net savings: deposits are
// positive, anything else negative.
func (s SavingsMovement) Signed() money.Cents {
	if s.Direction == SavingsDeposit {
		return s.Amount
	}
	return -s.Amount
}

// Tag labels records for envelope matching and the chart.
type Tag struct {
	ID    string
	Name  string
	Color string
}

// CreditCard defines an invoice cycle by its closing and due days.
type CreditCard struct {
	ID         string
	Name       string
	ClosingDay int
	DueDay     int
}

func (c CreditCard) valid() bool {
	return c.ClosingDay >= 1 && c.ClosingDay <= 31 && c.DueDay >= 1 && c.DueDay <= 31
}

// Records is the snapshot the engine computes over.
type Records struct {
	Income      []Income
	Fixed       []FixedExpense
	Variable    []VariableExpense
	Provisions  []Provision
	Savings     []SavingsMovement
	Tags        []Tag
	CreditCards []CreditCard
}

// Add appends rec to the slice of its category.
func (r *Records) Add(rec Record) {
	switch v := rec.(type) {
	case Income:
		r.Income = append(r.Income, v)
	case FixedExpense:
		r.Fixed = append(r.Fixed, v)
	case VariableExpense:
		r.Variable = append(r.Variable, v)
	case Provision:
		r.Provisions = append(r.Provisions, v)
	case SavingsMovement:
		r.Savings = append(r.Savings, v)
	default:
		panic(fmt.Sprintf("engine: unknown record type %T", rec))
	}
}

// TagResolver looks a tag up by ID.
type TagResolver func(id string) (Tag, bool)

// IndexTags returns a resolver backed by the given tags.
func IndexTags(tags []Tag) TagResolver {
	byID := make(map[string]Tag, len(tags))
	for _, t := range tags {
		byID[t.ID] = t
	}
	return func(id string) (Tag, bool) {
		if id == "" {
			return Tag{}, false
		}
		t, ok := byID[id]
		return t, ok
	}
}

// refs resolves the weak references of one computation.
type refs struct {
	tag   TagResolver
	cards map[string]CreditCard
}

func newRefs(r *Records, resolve TagResolver) refs {
	if resolve == nil {
		resolve = IndexTags(r.Tags)
	}
	cards := make(map[string]CreditCard, len(r.CreditCards))
	for _, c := range r.CreditCards {
		cards[c.ID] = c
	}
	return refs{tag: resolve, cards: cards}
}

// tagOf returns the resolved tag ID of e, or "" when it has none.
func (x refs) tagOf(e Entry) string {
	if t, ok := x.tag(e.TagRef); ok {
		return t.ID
	}
	return ""
}

// onCredit reports whether v is billed through a known card's invoice.
// Credit purchases pointing at a missing card count as cash.
func (x refs) onCredit(v VariableExpense) bool {
	if v.Method != PaymentCredit {
		return false
	}
	_, ok := x.cards[v.CardRef]
	return ok
}
