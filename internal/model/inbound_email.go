package model

import (
	"encoding/json"
	"time"
)

// Processing states of an inbound email. Transitions are one-way:
// pending -> processing -> completed | failed. A failed record is terminal.
const (
	EmailStatusPending    = "pending"
	EmailStatusProcessing = "processing"
	EmailStatusCompleted  = "completed"
	EmailStatusFailed     = "failed"
)

// QuestionAnswer is one extracted customer question with its generated draft.
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// InboundEmail is a customer-inquiry email delivered by the mail provider's
// webhook. Extracted questions and generated answers are stored as JSON text
// columns for portability, same as other serialized fields in this schema.
type InboundEmail struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             uint       `gorm:"not null;index" json:"user_id"`
	FromEmail          string     `gorm:"size:256;not null" json:"from_email"`
	Subject            string     `gorm:"size:512" json:"subject"`
	RawText            string     `gorm:"type:longtext" json:"-"`
	RawHTML            string     `gorm:"type:longtext" json:"-"`
	ExtractedQuestions string     `gorm:"type:text" json:"-"`
	AIAnswers          string     `gorm:"type:text" json:"-"`
	ProcessingStatus   string     `gorm:"size:16;not null;index" json:"processing_status"`
	ErrorMessage       string     `gorm:"size:1024" json:"error_message,omitempty"`
	CreatedAt          time.Time  `json:"received_at"`
	ProcessedAt        *time.Time `json:"processed_at,omitempty"`
	SlackNotifiedAt    *time.Time `json:"slack_notified_at,omitempty"`
}

// Questions returns the parsed extracted questions; empty on parse error.
func (e *InboundEmail) Questions() []string {
	if e.ExtractedQuestions == "" {
		return nil
	}
	var qs []string
	_ = json.Unmarshal([]byte(e.ExtractedQuestions), &qs)
	return qs
}

// SetQuestions stores the extracted questions as JSON.
func (e *InboundEmail) SetQuestions(qs []string) {
	if len(qs) == 0 {
		e.ExtractedQuestions = "[]"
		return
	}
	b, _ := json.Marshal(qs)
	e.ExtractedQuestions = string(b)
}

// Answers returns the parsed question/answer pairs; empty on parse error.
func (e *InboundEmail) Answers() []QuestionAnswer {
	if e.AIAnswers == "" {
		return nil
	}
	var as []QuestionAnswer
	_ = json.Unmarshal([]byte(e.AIAnswers), &as)
	return as
}

// SetAnswers stores the question/answer pairs as JSON.
func (e *InboundEmail) SetAnswers(as []QuestionAnswer) {
	if len(as) == 0 {
		e.AIAnswers = "[]"
		return
	}
	b, _ := json.Marshal(as)
	e.AIAnswers = string(b)
}

// Body returns the best-available email body: plain text first, HTML as a
// fallback, empty string when neither was delivered.
func (e *InboundEmail) Body() string {
	if e.RawText != "" {
		return e.RawText
	}
	return e.RawHTML
}
