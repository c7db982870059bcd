package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"borrowly-backend/internal/domain"
	"borrowly-backend/internal/repository"
)

type NotificationHandler struct {
	noteRepo repository.NotificationRepository
}

func NewNotificationHandler(noteRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{noteRepo: noteRepo}
}

type listNotificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	Total         int32                 `json:"total"`
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)
	offset := (page - 1) * pageSize

	notes, total, err := h.noteRepo.List(r.Context(), userID, pageSize, offset)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, listNotificationsResponse{Notifications: notes, Total: total})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized", "User not authenticated")
		return
	}

	idStr := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(idStr, 10, 32)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_input", "Invalid notification ID")
		return
	}

	if err := h.noteRepo.MarkAsRead(r.Context(), int32(id), userID); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"read": true})
}
