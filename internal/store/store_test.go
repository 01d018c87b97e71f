package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/codegenhq/codegen/internal/db"
	"github.com/codegenhq/codegen/internal/models"
	"gorm.io/gorm"
)

// newTestStore opens a throwaway SQLite database with the schema applied.
func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return New(conn), conn
}

func TestCreateUserAndAuthenticate(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice@example.com", "pw123", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.Password == "pw123" {
		t.Fatal("password stored in plaintext")
	}

	authed, errAuth := st.Authenticate(ctx, "alice@example.com", "pw123")
	if errAuth != nil {
		t.Fatalf("authenticate: %v", errAuth)
	}
	if authed == nil || authed.ID != user.ID {
		t.Fatal("expected matching credentials to authenticate")
	}

	wrong, errWrong := st.Authenticate(ctx, "alice@example.com", "nope")
	if errWrong != nil {
		t.Fatalf("authenticate: %v", errWrong)
	}
	if wrong != nil {
		t.Fatal("expected wrong password to fail")
	}

	unknown, errUnknown := st.Authenticate(ctx, "bob@example.com", "pw123")
	if errUnknown != nil {
		t.Fatalf("authenticate: %v", errUnknown)
	}
	if unknown != nil {
		t.Fatal("expected unknown email to fail")
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := st.CreateUser(ctx, "alice@example.com", "pw123", false); err != nil {
		t.Fatalf("create user: %v", err)
	}
	if _, err := st.CreateUser(ctx, "alice@example.com", "other", false); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}

	count, errCount := st.CountUsers(ctx)
	if errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected 1 user after duplicate registration, got %d", count)
	}
}

func TestFindUserByEmail_Missing(t *testing.T) {
	st, _ := newTestStore(t)

	user, err := st.FindUserByEmail(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if user != nil {
		t.Fatal("expected nil for missing user")
	}
}

func TestChatAndMessageOrdering(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	user, err := st.CreateUser(ctx, "alice@example.com", "pw123", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	chat, errChat := st.CreateChat(ctx, user.ID, "write a hello world function")
	if errChat != nil {
		t.Fatalf("create chat: %v", errChat)
	}

	if _, errMsg := st.AddMessage(ctx, chat.ID, models.RoleUser, "write a hello world function"); errMsg != nil {
		t.Fatalf("add user message: %v", errMsg)
	}
	if _, errMsg := st.AddMessage(ctx, chat.ID, models.RoleAssistant, "func main() {}"); errMsg != nil {
		t.Fatalf("add assistant message: %v", errMsg)
	}

	msgs, errList := st.ListMessages(ctx, chat.ID)
	if errList != nil {
		t.Fatalf("list messages: %v", errList)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Role != models.RoleUser || msgs[1].Role != models.RoleAssistant {
		t.Fatalf("expected user then assistant, got %q then %q", msgs[0].Role, msgs[1].Role)
	}
}

func TestListChatsForUser_NewestFirstAndScoped(t *testing.T) {
	st, conn := newTestStore(t)
	ctx := context.Background()

	alice, err := st.CreateUser(ctx, "alice@example.com", "pw123", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	bob, errBob := st.CreateUser(ctx, "bob@example.com", "pw123", false)
	if errBob != nil {
		t.Fatalf("create user: %v", errBob)
	}

	base := time.Now().UTC().Add(-time.Hour)
	for i, title := range []string{"oldest", "middle", "newest"} {
		chat := models.Chat{UserID: alice.ID, Title: title, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if errCreate := conn.Create(&chat).Error; errCreate != nil {
			t.Fatalf("create chat: %v", errCreate)
		}
	}
	if errCreate := conn.Create(&models.Chat{UserID: bob.ID, Title: "bobs", CreatedAt: base}).Error; errCreate != nil {
		t.Fatalf("create chat: %v", errCreate)
	}

	chats, errList := st.ListChatsForUser(ctx, alice.ID)
	if errList != nil {
		t.Fatalf("list chats: %v", errList)
	}
	if len(chats) != 3 {
		t.Fatalf("expected 3 chats for alice, got %d", len(chats))
	}
	if chats[0].Title != "newest" || chats[2].Title != "oldest" {
		t.Fatalf("expected newest first, got %q .. %q", chats[0].Title, chats[2].Title)
	}
}

func TestFindChatForUser_OwnershipScope(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	alice, _ := st.CreateUser(ctx, "alice@example.com", "pw123", false)
	bob, _ := st.CreateUser(ctx, "bob@example.com", "pw123", false)
	chat, errChat := st.CreateChat(ctx, alice.ID, "mine")
	if errChat != nil {
		t.Fatalf("create chat: %v", errChat)
	}

	found, errFind := st.FindChatForUser(ctx, chat.ID, alice.ID)
	if errFind != nil {
		t.Fatalf("find chat: %v", errFind)
	}
	if found == nil {
		t.Fatal("expected owner to find chat")
	}

	foreign, errForeign := st.FindChatForUser(ctx, chat.ID, bob.ID)
	if errForeign != nil {
		t.Fatalf("find chat: %v", errForeign)
	}
	if foreign != nil {
		t.Fatal("expected other user's lookup to miss")
	}
}

func TestListAllUsers_NewestFirstWithLimit(t *testing.T) {
	st, conn := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		user := models.User{Email: email, Password: "x", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if errCreate := conn.Create(&user).Error; errCreate != nil {
			t.Fatalf("create user: %v", errCreate)
		}
	}

	users, errList := st.ListAllUsers(ctx, 2)
	if errList != nil {
		t.Fatalf("list users: %v", errList)
	}
	if len(users) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(users))
	}
	if users[0].Email != "c@example.com" {
		t.Fatalf("expected newest first, got %q", users[0].Email)
	}
}

func TestListAllChats_LoadsOwnerAndMessages(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	alice, _ := st.CreateUser(ctx, "alice@example.com", "pw123", false)
	chat, errChat := st.CreateChat(ctx, alice.ID, "title")
	if errChat != nil {
		t.Fatalf("create chat: %v", errChat)
	}
	if _, errMsg := st.AddMessage(ctx, chat.ID, models.RoleUser, "q"); errMsg != nil {
		t.Fatalf("add message: %v", errMsg)
	}
	if _, errMsg := st.AddMessage(ctx, chat.ID, models.RoleAssistant, "a"); errMsg != nil {
		t.Fatalf("add message: %v", errMsg)
	}

	chats, errList := st.ListAllChats(ctx)
	if errList != nil {
		t.Fatalf("list all chats: %v", errList)
	}
	if len(chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(chats))
	}
	if chats[0].Owner == nil || chats[0].Owner.Email != "alice@example.com" {
		t.Fatal("expected owner to be loaded")
	}
	if len(chats[0].Messages) != 2 {
		t.Fatalf("expected 2 messages loaded, got %d", len(chats[0].Messages))
	}
	if chats[0].Messages[0].Role != models.RoleUser {
		t.Fatalf("expected user message first, got %q", chats[0].Messages[0].Role)
	}
}
