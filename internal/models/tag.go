package models

// Tag labels transactions. Provisions linked to a tag act as envelopes
// for the variable expenses carrying the same tag.
type Tag struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
	Color  string `json:"color"`
}
