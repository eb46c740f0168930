package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/service"
	"github.com/kindredhq/kindred/internal/transport/http/middleware"
	"github.com/kindredhq/kindred/pkg/validator"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	log         *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chatService: chatService, log: log}
}

// GetConversation handles GET /chat/{targetUserId}: find-or-create plus the
// full message log with sender names resolved.
func (h *ChatHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, err := uuid.Parse(r.PathValue("targetUserId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid target user ID")
		return
	}

	view, err := h.chatService.GetConversation(r.Context(), userID, targetID)
	if err != nil {
		h.chatError(w, "get conversation", err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// SendMessage handles POST /chat/{targetUserId}/message, the synchronous
// fallback send path.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	targetID, err := uuid.Parse(r.PathValue("targetUserId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid target user ID")
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateMessage(input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), userID, targetID, input.Text)
	if err != nil {
		h.chatError(w, "send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"data": msg})
}

func (h *ChatHandler) chatError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrSelfChat):
		writeError(w, http.StatusBadRequest, "SELF_CHAT", "Cannot chat with yourself")
	case errors.Is(err, service.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "EMPTY_MESSAGE", "Message text is required")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Try again shortly")
	default:
		h.log.Error(op, zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
	}
}
