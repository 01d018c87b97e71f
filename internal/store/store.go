package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/codegenhq/codegen/internal/models"
	"github.com/codegenhq/codegen/internal/security"
	"gorm.io/gorm"
)

// ErrDuplicateEmail is returned when registering an email that already has
// an account. Uniqueness is enforced by the index, not a pre-check.
var ErrDuplicateEmail = errors.New("store: email already registered")

// DefaultUserListLimit caps ListAllUsers when no limit is given.
const DefaultUserListLimit = 100

// Store provides durable access to users, chats, and messages. Every write
// commits immediately; each call is its own transaction.
type Store struct {
	db *gorm.DB
}

// New constructs a Store.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// FindUserByEmail returns the user with the given email, or nil when absent.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	errFind := s.db.WithContext(ctx).Where("email = ?", strings.TrimSpace(email)).First(&user).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: find user: %w", errFind)
	}
	return &user, nil
}

// CreateUser hashes the password and inserts a new account. The plaintext
// never reaches the database.
func (s *Store) CreateUser(ctx context.Context, email, password string, isAdmin bool) (*models.User, error) {
	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return nil, errHash
	}
	user := models.User{
		Email:    strings.TrimSpace(email),
		Password: hash,
		IsAdmin:  isAdmin,
	}
	if errCreate := s.db.WithContext(ctx).Create(&user).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("store: create user: %w", errCreate)
	}
	return &user, nil
}

// Authenticate returns the user when the credentials match, nil otherwise.
// An unknown email and a wrong password are indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, errFind := s.FindUserByEmail(ctx, email)
	if errFind != nil {
		return nil, errFind
	}
	if user == nil || !security.VerifyPassword(password, user.Password) {
		return nil, nil
	}
	return user, nil
}

// CreateChat inserts a new chat owned by userID.
func (s *Store) CreateChat(ctx context.Context, userID uint64, title string) (*models.Chat, error) {
	chat := models.Chat{
		UserID: userID,
		Title:  title,
	}
	if errCreate := s.db.WithContext(ctx).Create(&chat).Error; errCreate != nil {
		return nil, fmt.Errorf("store: create chat: %w", errCreate)
	}
	return &chat, nil
}

// AddMessage appends a message to a chat.
func (s *Store) AddMessage(ctx context.Context, chatID uint64, role, content string) (*models.Message, error) {
	msg := models.Message{
		ChatID:  chatID,
		Role:    role,
		Content: content,
	}
	if errCreate := s.db.WithContext(ctx).Create(&msg).Error; errCreate != nil {
		return nil, fmt.Errorf("store: add message: %w", errCreate)
	}
	return &msg, nil
}

// ListChatsForUser returns the user's chats, newest first.
func (s *Store) ListChatsForUser(ctx context.Context, userID uint64) ([]models.Chat, error) {
	var chats []models.Chat
	errFind := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&chats).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list chats: %w", errFind)
	}
	return chats, nil
}

// FindChatForUser returns the chat only when it belongs to userID, nil
// otherwise.
func (s *Store) FindChatForUser(ctx context.Context, chatID, userID uint64) (*models.Chat, error) {
	var chat models.Chat
	errFind := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", chatID, userID).
		First(&chat).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: find chat: %w", errFind)
	}
	return &chat, nil
}

// ListMessages returns a chat's messages, oldest first.
func (s *Store) ListMessages(ctx context.Context, chatID uint64) ([]models.Message, error) {
	var msgs []models.Message
	errFind := s.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list messages: %w", errFind)
	}
	return msgs, nil
}

// ListAllUsers returns users newest first, capped at limit.
func (s *Store) ListAllUsers(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 {
		limit = DefaultUserListLimit
	}
	var users []models.User
	errFind := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&users).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list users: %w", errFind)
	}
	return users, nil
}

// CountUsers returns the total number of accounts.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if errCount := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; errCount != nil {
		return 0, fmt.Errorf("store: count users: %w", errCount)
	}
	return count, nil
}

// ListAllChats returns every chat newest first with its owner and its
// messages (oldest first) loaded. Used by the admin listing.
func (s *Store) ListAllChats(ctx context.Context) ([]models.Chat, error) {
	var chats []models.Chat
	errFind := s.db.WithContext(ctx).
		Preload("Owner").
		Preload("Messages", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("created_at ASC, id ASC")
		}).
		Order("created_at DESC").
		Find(&chats).Error
	if errFind != nil {
		return nil, fmt.Errorf("store: list all chats: %w", errFind)
	}
	return chats, nil
}
