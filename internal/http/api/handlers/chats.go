package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/codegenhq/codegen/internal/store"
	"github.com/gin-gonic/gin"
)

// ChatHandler serves the authenticated user's own chat history.
type ChatHandler struct {
	store *store.Store
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(st *store.Store) *ChatHandler {
	return &ChatHandler{store: st}
}

// List returns the caller's chats, newest first. The env-seeded admin owns
// no rows and gets an empty list.
func (h *ChatHandler) List(c *gin.Context) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if principal.Kind != PrincipalUser || principal.User == nil {
		c.JSON(http.StatusOK, gin.H{"chats": []gin.H{}})
		return
	}

	chats, errList := h.store.ListChatsForUser(c.Request.Context(), principal.User.ID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list chats failed"})
		return
	}
	out := make([]gin.H, 0, len(chats))
	for _, chat := range chats {
		out = append(out, gin.H{
			"id":         chat.ID,
			"title":      chat.Title,
			"created_at": chat.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"chats": out})
}

// Messages returns the messages of one of the caller's chats, oldest
// first. Chats owned by other users are indistinguishable from missing
// ones.
func (h *ChatHandler) Messages(c *gin.Context) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	if principal.Kind != PrincipalUser || principal.User == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	chatID, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	chat, errFind := h.store.FindChatForUser(c.Request.Context(), chatID, principal.User.ID)
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "find chat failed"})
		return
	}
	if chat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	msgs, errList := h.store.ListMessages(c.Request.Context(), chat.ID)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list messages failed"})
		return
	}
	out := make([]gin.H, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, gin.H{
			"id":         msg.ID,
			"role":       msg.Role,
			"content":    msg.Content,
			"created_at": msg.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}
