package models

// CreditCard defines the invoice cycle of a card: purchases made after the
// previous closing day and up to this one are billed on the due day.
type CreditCard struct {
	Base
	UserID     string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name       string `gorm:"not null" json:"name"`
	ClosingDay int    `gorm:"not null" json:"closing_day"`
	DueDay     int    `gorm:"not null" json:"due_day"`
}
