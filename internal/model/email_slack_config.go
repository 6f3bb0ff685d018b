package model

import "time"

// UserEmailSlackConfig holds one tenant's inbound email address and Slack
// incoming-webhook URL. One row per user; the inbound address is unique
// across all tenants. Both fields are nullable, hence pointers.
type UserEmailSlackConfig struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	SlackWebhookURL     *string   `gorm:"size:512" json:"slack_webhook_url"`
	InboundEmailAddress *string   `gorm:"size:256;uniqueIndex" json:"inbound_email_address"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
