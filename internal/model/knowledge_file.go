package model

import "time"

// KnowledgeFile is one uploaded brand-knowledge document. The raw content is
// kept verbatim; GeminiStoreName/GeminiDocumentName are filled in once the
// copy submitted to the file-search service has been indexed.
type KnowledgeFile struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"not null;index" json:"user_id"`
	Name               string    `gorm:"size:256;not null" json:"name"`
	Content            string    `gorm:"type:longtext;not null" json:"content"`
	Size               int64     `gorm:"not null" json:"size"`
	GeminiStoreName    string    `gorm:"size:256" json:"-"`
	GeminiDocumentName string    `gorm:"size:256" json:"-"`
	CreatedAt          time.Time `json:"uploaded_at"`
}

// SafeData is the listing shape: everything except the raw content.
type KnowledgeFileSafeData struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func (f *KnowledgeFile) SafeData() KnowledgeFileSafeData {
	return KnowledgeFileSafeData{
		ID:         f.ID,
		Name:       f.Name,
		Size:       f.Size,
		UploadedAt: f.CreatedAt,
	}
}
