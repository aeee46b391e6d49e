package handlers

import (
	"time"

	"fintrack/internal/engine"
)

// Amounts in summary responses are integer cents; percentages are numbers
// with one decimal place.

// RecordResponse is one record of a monthly view.
type RecordResponse struct {
	ID              string `json:"id"`
	Category        string `json:"category"`
	Date            string `json:"date"`
	Amount          int64  `json:"amount"`
	Description     string `json:"description"`
	TagID           string `json:"tag_id,omitempty"`
	GroupID         string `json:"group_id,omitempty"`
	InstallmentInfo string `json:"installment_info,omitempty"`
	IsRecurring     bool   `json:"is_recurring"`

	PaymentMethod    string `json:"payment_method,omitempty"`
	CreditCardID     string `json:"credit_card_id,omitempty"`
	SavingsDirection string `json:"savings_direction,omitempty"`
}

// FixedResponse is a bill, or an invoice standing in for one, with its due state.
type FixedResponse struct {
	RecordResponse
	Paid         bool     `json:"paid"`
	DaysUntilDue int      `json:"days_until_due"`
	DueSoon      bool     `json:"due_soon"`
	Overdue      bool     `json:"overdue"`
	IsInvoice    bool     `json:"is_invoice"`
	InvoiceCard  string   `json:"invoice_card_id,omitempty"`
	PurchaseIDs  []string `json:"purchase_ids,omitempty"`
}

// InvoiceResponse is a credit card bill for one month.
type InvoiceResponse struct {
	ID           string           `json:"id"`
	CreditCardID string           `json:"credit_card_id"`
	CardName     string           `json:"card_name"`
	Period       string           `json:"period"`
	After        string           `json:"window_after"`
	Until        string           `json:"window_until"`
	DueDate      string           `json:"due_date"`
	Total        int64            `json:"total"`
	Purchases    []RecordResponse `json:"purchases"`
}

// EnvelopeResponse is a provision reconciled with the month's spending.
type EnvelopeResponse struct {
	ProvisionID string  `json:"provision_id"`
	Description string  `json:"description"`
	TagID       string  `json:"tag_id,omitempty"`
	TagName     string  `json:"tag_name,omitempty"`
	TagColor    string  `json:"tag_color,omitempty"`
	Amount      int64   `json:"amount"`
	Spent       int64   `json:"spent"`
	Effective   int64   `json:"effective"`
	Remaining   int64   `json:"remaining"`
	Usage       float64 `json:"usage_pct"`
	Critical    bool    `json:"critical"`
}

// TotalsResponse holds the headline numbers of a month.
type TotalsResponse struct {
	Income                     int64 `json:"income"`
	Fixed                      int64 `json:"fixed"`
	Variable                   int64 `json:"variable"`
	NetSavingsMovement         int64 `json:"net_savings_movement"`
	UnprovisionedVariableSpend int64 `json:"unprovisioned_variable_spend"`
	EffectiveProvisionedSpend  int64 `json:"effective_provisioned_spend"`
	CommittedSpend             int64 `json:"committed_spend"`
	ProjectedSurplus           int64 `json:"projected_surplus"`
	PendingCommitments         int64 `json:"pending_commitments"`
}

// ChartEntryResponse is one slice of the spending-by-tag chart.
type ChartEntryResponse struct {
	TagID  string `json:"tag_id,omitempty"`
	Label  string `json:"label"`
	Color  string `json:"color,omitempty"`
	Amount int64  `json:"amount"`
}

// AlertsResponse lists what the dashboard warns about.
type AlertsResponse struct {
	DueSoon           []FixedResponse    `json:"due_soon"`
	Overdue           []FixedResponse    `json:"overdue"`
	CriticalEnvelopes []EnvelopeResponse `json:"critical_envelopes"`
}

// SavingsPositionResponse places the month in the savings balance.
type SavingsPositionResponse struct {
	BeforeMonth    int64 `json:"before_month"`
	Movement       int64 `json:"movement"`
	Current        int64 `json:"current"`
	AccountBalance int64 `json:"account_balance"`
	Patrimony      int64 `json:"patrimony"`
}

// MonthlySummaryResponse is the dashboard of one month.
type MonthlySummaryResponse struct {
	Period     string                  `json:"period"`
	Today      string                  `json:"today"`
	Totals     TotalsResponse          `json:"totals"`
	Income     []RecordResponse        `json:"income"`
	Fixed      []FixedResponse         `json:"fixed"`
	Variable   []RecordResponse        `json:"variable"`
	Provisions []RecordResponse        `json:"provisions"`
	Savings    []RecordResponse        `json:"savings"`
	Invoices   []InvoiceResponse       `json:"invoices"`
	Envelopes  []EnvelopeResponse      `json:"envelopes"`
	Chart      []ChartEntryResponse    `json:"chart"`
	Alerts     AlertsResponse          `json:"alerts"`
	Upcoming   []FixedResponse         `json:"upcoming"`
	Position   SavingsPositionResponse `json:"savings_position"`
	Skipped    int                     `json:"skipped"`
}

// MonthFlowResponse is one month of the annual cash flow.
type MonthFlowResponse struct {
	Month    int   `json:"month"`
	Income   int64 `json:"income"`
	Fixed    int64 `json:"fixed"`
	Variable int64 `json:"variable"`
	Net      int64 `json:"net"`
}

// AnnualOverviewResponse aggregates a calendar year.
type AnnualOverviewResponse struct {
	Year             int                  `json:"year"`
	Income           int64                `json:"income"`
	Outflow          int64                `json:"outflow"`
	Balance          int64                `json:"balance"`
	NetSaved         int64                `json:"net_saved"`
	SavingsRate      float64              `json:"savings_rate_pct"`
	CashFlow         []MonthFlowResponse  `json:"cash_flow"`
	Distribution     []ChartEntryResponse `json:"distribution"`
	SavingsEvolution []int64              `json:"savings_evolution"`
	Skipped          int                  `json:"skipped"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func newRecordResponse(rec engine.Record) RecordResponse {
	e := rec.Header()
	r := RecordResponse{
		ID:              e.ID,
		Category:        string(rec.Category()),
		Date:            formatDate(e.Date),
		Amount:          int64(e.Amount),
		Description:     e.Description,
		TagID:           e.TagRef,
		GroupID:         e.GroupRef,
		InstallmentInfo: e.InstallmentInfo,
		IsRecurring:     e.Recurring,
	}
	switch v := rec.(type) {
	case engine.VariableExpense:
		r.PaymentMethod = string(v.Method)
		r.CreditCardID = v.CardRef
	case engine.SavingsMovement:
		r.SavingsDirection = string(v.Direction)
	}
	return r
}

func newRecordResponses[T engine.Record](recs []T) []RecordResponse {
	out := make([]RecordResponse, len(recs))
	for i, rec := range recs {
		out[i] = newRecordResponse(rec)
	}
	return out
}

func newFixedResponses(views []engine.FixedView) []FixedResponse {
	out := make([]FixedResponse, len(views))
	for i, v := range views {
		f := FixedResponse{
			RecordResponse: newRecordResponse(v.FixedExpense),
			Paid:           v.Paid,
			DaysUntilDue:   v.DaysUntilDue,
			DueSoon:        v.DueSoon,
			Overdue:        v.Overdue,
		}
		if v.Invoice != nil {
			f.IsInvoice = true
			f.InvoiceCard = v.Invoice.CardRef
			f.PurchaseIDs = v.Invoice.Purchases
		}
		out[i] = f
	}
	return out
}

func newInvoiceResponse(inv engine.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:           inv.ID,
		CreditCardID: inv.Card.ID,
		CardName:     inv.Card.Name,
		Period:       inv.Period.String(),
		After:        formatDate(inv.After),
		Until:        formatDate(inv.Until),
		DueDate:      formatDate(inv.DueDate),
		Total:        int64(inv.Total),
		Purchases:    newRecordResponses(inv.Purchases),
	}
}

func newEnvelopeResponses(envs []engine.Envelope) []EnvelopeResponse {
	out := make([]EnvelopeResponse, len(envs))
	for i, env := range envs {
		r := EnvelopeResponse{
			ProvisionID: env.Provision.ID,
			Description: env.Provision.Description,
			Amount:      int64(env.Provision.Amount),
			Spent:       int64(env.Spent),
			Effective:   int64(env.Effective),
			Remaining:   int64(env.Remaining),
			Usage:       env.Usage.InexactFloat64(),
			Critical:    env.Critical,
		}
		if env.Tag != nil {
			r.TagID = env.Tag.ID
			r.TagName = env.Tag.Name
			r.TagColor = env.Tag.Color
		}
		out[i] = r
	}
	return out
}

func newChartResponses(entries []engine.ChartEntry) []ChartEntryResponse {
	out := make([]ChartEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = ChartEntryResponse{TagID: e.TagID, Label: e.Label, Color: e.Color, Amount: int64(e.Amount)}
	}
	return out
}

func newMonthlySummaryResponse(s *engine.Summary) MonthlySummaryResponse {
	invoices := make([]InvoiceResponse, len(s.Invoices))
	for i, inv := range s.Invoices {
		invoices[i] = newInvoiceResponse(inv)
	}
	t := s.Totals
	return MonthlySummaryResponse{
		Period: s.Period.String(),
		Today:  formatDate(s.Today),
		Totals: TotalsResponse{
			Income:                     int64(t.Income),
			Fixed:                      int64(t.Fixed),
			Variable:                   int64(t.Variable),
			NetSavingsMovement:         int64(t.NetSavingsMovement),
			UnprovisionedVariableSpend: int64(t.UnprovisionedVariableSpend),
			EffectiveProvisionedSpend:  int64(t.EffectiveProvisionedSpend),
			CommittedSpend:             int64(t.CommittedSpend),
			ProjectedSurplus:           int64(t.ProjectedSurplus),
			PendingCommitments:         int64(t.PendingCommitments),
		},
		Income:     newRecordResponses(s.Income),
		Fixed:      newFixedResponses(s.Fixed),
		Variable:   newRecordResponses(s.Variable),
		Provisions: newRecordResponses(s.Provisions),
		Savings:    newRecordResponses(s.Savings),
		Invoices:   invoices,
		Envelopes:  newEnvelopeResponses(s.Envelopes),
		Chart:      newChartResponses(s.Chart),
		Alerts: AlertsResponse{
			DueSoon:           newFixedResponses(s.Alerts.DueSoon),
			Overdue:           newFixedResponses(s.Alerts.Overdue),
			CriticalEnvelopes: newEnvelopeResponses(s.Alerts.CriticalEnvelopes),
		},
		Upcoming: newFixedResponses(s.Upcoming),
		Position: SavingsPositionResponse{
			BeforeMonth:    int64(s.Position.BeforeMonth),
			Movement:       int64(s.Position.Movement),
			Current:        int64(s.Position.Current),
			AccountBalance: int64(s.Position.AccountBalance),
			Patrimony:      int64(s.Position.Patrimony),
		},
		Skipped: s.Skipped,
	}
}

func newAnnualOverviewResponse(ov *engine.YearOverview) AnnualOverviewResponse {
	flow := make([]MonthFlowResponse, len(ov.CashFlow))
	for i, m := range ov.CashFlow {
		flow[i] = MonthFlowResponse{
			Month:    int(m.Month),
			Income:   int64(m.Income),
			Fixed:    int64(m.Fixed),
			Variable: int64(m.Variable),
			Net:      int64(m.Net),
		}
	}
	evolution := make([]int64, len(ov.SavingsEvolution))
	for i, v := range ov.SavingsEvolution {
		evolution[i] = int64(v)
	}
	return AnnualOverviewResponse{
		Year:             ov.Year,
		Income:           int64(ov.Income),
		Outflow:          int64(ov.Outflow),
		Balance:          int64(ov.Balance),
		NetSaved:         int64(ov.NetSaved),
		SavingsRate:      ov.SavingsRate.InexactFloat64(),
		CashFlow:         flow,
		Distribution:     newChartResponses(ov.Distribution),
		SavingsEvolution: evolution,
		Skipped:          ov.Skipped,
	}
}
