package model

import "time"

// BrandTone is a named system-prompt template controlling the answer persona.
// Zero or one default per tenant is intended; the flag is taken as stored and
// the newest default wins at lookup time.
type BrandTone struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	Name               string    `gorm:"size:128;not null" json:"name"`
	Description        string    `gorm:"size:512" json:"description,omitempty"`
	InstructionContent string    `gorm:"type:text;not null" json:"instruction_content"`
	IsDefault          bool      `gorm:"not null;default:false;index" json:"is_default"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
