package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/kindredhq/kindred/internal/service"
	"github.com/kindredhq/kindred/internal/transport/http/middleware"
	"go.uber.org/zap"
)

type UserHandler struct {
	connService *service.ConnectionService
	feedService *service.FeedService
	log         *zap.Logger
}

func NewUserHandler(connService *service.ConnectionService, feedService *service.FeedService, log *zap.Logger) *UserHandler {
	return &UserHandler{connService: connService, feedService: feedService, log: log}
}

// Feed handles GET /feed?page=&limit=. Malformed or out-of-range pagination
// is clamped, never rejected.
func (h *UserHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page == 0 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit == 0 {
		limit = service.DefaultPageSize
	}

	users, err := h.feedService.Feed(r.Context(), userID, page, limit)
	if err != nil {
		h.storeAware(w, "feed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": users})
}

func (h *UserHandler) Connections(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	conns, err := h.connService.Connections(r.Context(), userID)
	if err != nil {
		h.storeAware(w, "connections", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": conns})
}

func (h *UserHandler) RequestsReceived(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	reqs, err := h.connService.PendingReceived(r.Context(), userID)
	if err != nil {
		h.storeAware(w, "requests received", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": reqs})
}

func (h *UserHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stats, err := h.connService.DashboardStats(r.Context(), userID)
	if err != nil {
		h.storeAware(w, "dashboard stats", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": stats})
}

func (h *UserHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	activities, err := h.connService.RecentActivity(r.Context(), userID)
	if err != nil {
		h.storeAware(w, "recent activity", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": activities})
}

func (h *UserHandler) storeAware(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, service.ErrStoreUnavailable) {
		writeError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Try again shortly")
		return
	}
	h.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL", "Something went wrong")
}
