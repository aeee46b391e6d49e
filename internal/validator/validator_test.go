package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

func newValidate(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	rules := map[string]validator.Func{
		"hex_color":            validateHexColor,
		"transaction_category": validateTransactionCategory,
		"payment_method":       validatePaymentMethod,
		"savings_direction":    validateSavingsDirection,
		"recurrence_type":      validateRecurrenceType,
		"day_of_month":         validateDayOfMonth,
		"amount":               validateAmount,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			t.Fatalf("register %s: %v", tag, err)
		}
	}
	return v
}

func TestValidators(t *testing.T) {
	v := newValidate(t)

	tests := []struct {
		name  string
		value interface{}
		tag   string
		valid bool
	}{
		{"short hex color", "#fff", "hex_color", true},
		{"long hex color", "#22C55E", "hex_color", true},
		{"color without hash", "22C55E", "hex_color", false},
		{"fixed expense category", "fixed_expense", "transaction_category", true},
		{"unknown category", "transfer", "transaction_category", false},
		{"credit method", "credit", "payment_method", true},
		{"pix method", "pix", "payment_method", false},
		{"withdrawal", "withdrawal", "savings_direction", true},
		{"sideways", "sideways", "savings_direction", false},
		{"installments plan", "installments", "recurrence_type", true},
		{"weekly plan", "weekly", "recurrence_type", false},
		{"first day", 1, "day_of_month", true},
		{"day 31", 31, "day_of_month", true},
		{"day zero", 0, "day_of_month", false},
		{"day 32", 32, "day_of_month", false},
		{"comma amount", "12,50", "amount", true},
		{"negative amount", "-3", "amount", false},
		{"garbage amount", "abc", "amount", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Var(tt.value, tt.tag)
			if tt.valid && err != nil {
				t.Errorf("expected %v to pass %s, got %v", tt.value, tt.tag, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %v to fail %s", tt.value, tt.tag)
			}
		})
	}
}
