package model

import "time"

// FileSearchStore maps a tenant to its store in the managed file-search
// service. At most one per user, created lazily on first document upload.
// StoreName is the opaque resource name returned by the service.
type FileSearchStore struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	StoreName string    `gorm:"size:256;not null" json:"store_name"`
	CreatedAt time.Time `json:"created_at"`
}
