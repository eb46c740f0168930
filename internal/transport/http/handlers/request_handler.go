package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/kindredhq/kindred/internal/domain"
	"github.com/kindredhq/kindred/internal/service"
	"github.com/kindredhq/kindred/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type RequestHandler struct {
	connService *service.ConnectionService
	log         *zap.Logger
}

func NewRequestHandler(connService *service.ConnectionService, log *zap.Logger) *RequestHandler {
	return &RequestHandler{connService: connService, log: log}
}

// Send handles POST /request/send/{status}/{targetUserId},
// status ∈ {interested, ignored}.
func (h *RequestHandler) Send(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	status, ok := domain.ParseSendStatus(r.PathValue("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be interested or ignored")
		return
	}
	targetID, err := uuid.Parse(r.PathValue("targetUserId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid target user ID")
		return
	}

	req, err := h.connService.Send(r.Context(), userID, targetID, status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSelfRequest):
			writeError(w, http.StatusBadRequest, "SELF_REQUEST", "Cannot send a connection request to yourself")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		case errors.Is(err, service.ErrRequestExists):
			writeError(w, http.StatusConflict, "DUPLICATE_REQUEST", "A connection request already exists for this pair")
		case errors.Is(err, service.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Try again shortly")
		default:
			h.log.Error("send request", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

// Review handles POST /request/review/{status}/{requestId},
// status ∈ {accepted, rejected}.
func (h *RequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	decision, ok := domain.ParseReviewStatus(r.PathValue("status"))
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_STATUS", "Status must be accepted or rejected")
		return
	}
	requestID, err := uuid.Parse(r.PathValue("requestId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid request ID")
		return
	}

	req, err := h.connService.Review(r.Context(), userID, requestID, decision)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Connection request not found")
		case errors.Is(err, service.ErrNotRequestRecipient):
			writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the request recipient can review it")
		case errors.Is(err, service.ErrRequestNotPending):
			writeError(w, http.StatusBadRequest, "NOT_PENDING", "Connection request is not pending review")
		case errors.Is(err, service.ErrStoreUnavailable):
			writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Try again shortly")
		default:
			h.log.Error("review request", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
		}
		return
	}

	writeJSON(w, http.StatusOK, req)
}
