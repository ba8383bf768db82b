package domain

import "time"

// Chat roles
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
	ChatRoleSystem    = "system"
)

// ChatMessage is one turn of a therapist-chat conversation.
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession holds the full ordered message list for one user session. The
// list is always written back as a whole.
type ChatSession struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	UserID    uint          `gorm:"uniqueIndex:ux_chat_user_session,priority:1;not null" json:"user_id"`
	SessionID string        `gorm:"size:64;uniqueIndex:ux_chat_user_session,priority:2;not null" json:"session_id"`
	Messages  []ChatMessage `gorm:"serializer:json;type:json" json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// MergeMessages appends each local message to server unless a message with
// identical content and identical timestamp is already present. Matching is
// exact; two messages that differ only in whitespace are both kept.
func MergeMessages(server, local []ChatMessage) []ChatMessage {
	merged := make([]ChatMessage, 0, len(server)+len(local))
	merged = append(merged, server...)
	for _, m := range local {
		if containsMessage(merged, m) {
			continue
		}
		merged = append(merged, m)
	}
	return merged
}

func containsMessage(list []ChatMessage, m ChatMessage) bool {
	for _, existing := range list {
		if existing.Content == m.Content && existing.Timestamp.Equal(m.Timestamp) {
			return true
		}
	}
	return false
}
