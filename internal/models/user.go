package models

import "time"

// User represents a registered account stored in the database.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login identity.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	IsAdmin bool `gorm:"not null;default:false"` // Whether the account has admin rights.

	Chats []Chat `gorm:"foreignKey:UserID"` // Owned chats.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
}
