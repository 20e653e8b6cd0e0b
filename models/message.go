package models

import (
	"strings"
	"time"
)

type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	RoomID     string    `gorm:"type:varchar(36);not null;index" json:"roomId"`
	UserID     uint      `gorm:"not null;index" json:"userId"`
	UserName   string    `gorm:"size:255" json:"userName"`
	Content    string    `gorm:"type:text" json:"content"`
	IsVoice    bool      `gorm:"not null;default:false" json:"isVoice"`
	Transcript string    `gorm:"type:text" json:"transcript,omitempty"`
	AudioURL   string    `gorm:"size:1024" json:"audioUrl,omitempty"`
	CreatedAt  time.Time `gorm:"index" json:"createdAt"`
}

// Text is what the message contributes to the conversation transcript.
// Voice messages fall back to their transcript.
func (m *Message) Text() string {
	if m.IsVoice && strings.TrimSpace(m.Transcript) != "" {
		return strings.TrimSpace(m.Transcript)
	}
	if text := strings.TrimSpace(m.Content); text != "" {
		return text
	}
	return strings.TrimSpace(m.Transcript)
}
