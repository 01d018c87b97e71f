package models

import "time"

// Message role values. Each successful generation appends a user message
// followed by an assistant message.
const (
	// RoleUser marks a message containing the caller's prompt.
	RoleUser = "user"
	// RoleAssistant marks a message containing generated output.
	RoleAssistant = "assistant"
)

// Chat represents a single generation session owned by one user.
type Chat struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"`      // Owning user ID.
	Owner  *User  `gorm:"foreignKey:UserID"`   // Owning user.
	Title  string `gorm:"type:text;not null"`  // Title derived from the initiating prompt.

	Messages []Message `gorm:"foreignKey:ChatID"` // Ordered message history.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}

// Message represents one entry in a chat, immutable once written.
type Message struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	ChatID  uint64 `gorm:"not null;index"`     // Owning chat ID.
	Role    string `gorm:"type:text;not null"` // RoleUser or RoleAssistant.
	Content string `gorm:"type:text;not null"` // Message text.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
