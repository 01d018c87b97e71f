package handlers

import (
	"net/http"

	"github.com/codegenhq/codegen/internal/models"
	"github.com/codegenhq/codegen/internal/store"
	"github.com/gin-gonic/gin"
)

// AdminHandler serves the admin listing endpoints.
type AdminHandler struct {
	store *store.Store
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

// Users lists all accounts, newest first.
func (h *AdminHandler) Users(c *gin.Context) {
	users, errList := h.store.ListAllUsers(c.Request.Context(), store.DefaultUserListLimit)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list users failed"})
		return
	}
	out := make([]gin.H, 0, len(users))
	for _, user := range users {
		out = append(out, gin.H{
			"email":      user.Email,
			"created_at": user.CreatedAt,
			"is_admin":   user.IsAdmin,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Chats lists all recorded prompt/response pairs, newest chat first. Within
// a chat, each assistant message is paired with the most recent unpaired
// user message; the pairing resets after each match, so an assistant
// message with no preceding user message reports an empty prompt and a
// trailing user message produces no row.
func (h *AdminHandler) Chats(c *gin.Context) {
	chats, errList := h.store.ListAllChats(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list chats failed"})
		return
	}

	rows := make([]gin.H, 0, len(chats))
	for _, chat := range chats {
		var username string
		if chat.Owner != nil {
			username = chat.Owner.Email
		}
		var lastPrompt string
		for _, msg := range chat.Messages {
			switch msg.Role {
			case models.RoleUser:
				lastPrompt = msg.Content
			case models.RoleAssistant:
				rows = append(rows, gin.H{
					"username": username,
					"prompt":   lastPrompt,
					"response": msg.Content,
				})
				lastPrompt = ""
			}
		}
	}
	c.JSON(http.StatusOK, rows)
}
