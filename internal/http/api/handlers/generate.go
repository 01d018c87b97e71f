package handlers

import (
	"context"
	"net/http"

	"github.com/codegenhq/codegen/internal/completion"
	"github.com/codegenhq/codegen/internal/models"
	"github.com/codegenhq/codegen/internal/store"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// titleMaxLen caps chat titles derived from the initiating prompt.
const titleMaxLen = 60

// GenerateHandler serves prompt submission.
type GenerateHandler struct {
	store     *store.Store
	generator completion.Generator
}

// NewGenerateHandler constructs a GenerateHandler. A nil generator means
// the completion backend was not configured at startup.
func NewGenerateHandler(st *store.Store, generator completion.Generator) *GenerateHandler {
	return &GenerateHandler{store: st, generator: generator}
}

// generateRequest defines the request body for generation.
type generateRequest struct {
	Prompt string `json:"prompt"`
	User   string `json:"user"`
}

// Generate forwards the prompt to the completion backend and, for persisted
// users, records the exchange as a chat. Persistence is best-effort: the
// generated text is returned even when recording it fails.
func (h *GenerateHandler) Generate(c *gin.Context) {
	if h.generator == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "generation backend not available on server"})
		return
	}

	var body generateRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing prompt"})
		return
	}

	result, errGenerate := h.generator.Generate(c.Request.Context(), body.Prompt)
	if errGenerate != nil {
		log.WithError(errGenerate).Error("generation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errGenerate.Error()})
		return
	}

	if principal, ok := CurrentPrincipal(c); ok {
		h.persistExchange(c.Request.Context(), principal, body.Prompt, result)
	}

	c.JSON(http.StatusOK, gin.H{"response": result})
}

// persistExchange records the prompt/response pair for persisted users. The
// env-seeded admin has no row identity, so nothing is stored for it.
func (h *GenerateHandler) persistExchange(ctx context.Context, principal Principal, prompt, result string) {
	if principal.Kind != PrincipalUser || principal.User == nil {
		log.WithField("email", principal.Email).Debug("skipping chat persistence for env-seeded admin")
		return
	}

	chat, errChat := h.store.CreateChat(ctx, principal.User.ID, chatTitle(prompt))
	if errChat != nil {
		log.WithError(errChat).Warn("could not persist chat")
		return
	}
	if _, errMsg := h.store.AddMessage(ctx, chat.ID, models.RoleUser, prompt); errMsg != nil {
		log.WithError(errMsg).Warn("could not persist user message")
		return
	}
	if _, errMsg := h.store.AddMessage(ctx, chat.ID, models.RoleAssistant, result); errMsg != nil {
		log.WithError(errMsg).Warn("could not persist assistant message")
	}
}

// chatTitle derives a chat title from the initiating prompt. Truncation
// counts runes so multibyte prompts never yield an invalid-UTF-8 title.
func chatTitle(prompt string) string {
	runes := []rune(prompt)
	if len(runes) > titleMaxLen {
		return string(runes[:titleMaxLen]) + "..."
	}
	return prompt
}
