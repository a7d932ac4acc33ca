package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/seojun-dev/geumbang/internal/domain"
)

// ThreadHandler serves conversation-thread endpoints. All routes are
// participant-gated through the caller's anonymous identity.
type ThreadHandler struct {
	svc    MarketService
	ids    IdentitySource
	logger *slog.Logger
}

// NewThreadHandler creates a ThreadHandler with the given service, identity
// source, and logger.
func NewThreadHandler(svc MarketService, ids IdentitySource, logger *slog.Logger) *ThreadHandler {
	return &ThreadHandler{
		svc:    svc,
		ids:    ids,
		logger: logger,
	}
}

// GetThread returns one thread, participants only.
// GET /api/threads/{id}
func (h *ThreadHandler) GetThread(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing thread id")
		return
	}

	uid := callerIdentity(w, r, h.ids)

	thread, err := h.svc.Thread(r.Context(), id, uid)
	if err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get thread failed",
			slog.String("thread_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get thread")
		return
	}

	writeJSON(w, http.StatusOK, thread)
}

// listMessagesResponse wraps a thread's message log.
type listMessagesResponse struct {
	Messages []domain.Message `json:"messages"`
	Total    int              `json:"total"`
}

// ListMessages returns the thread's messages, oldest first. Like the thread
// itself, the log is visible to participants only.
// GET /api/threads/{id}/messages
func (h *ThreadHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing thread id")
		return
	}

	uid := callerIdentity(w, r, h.ids)

	if _, err := h.svc.Thread(r.Context(), id, uid); err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get thread failed",
			slog.String("thread_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get thread")
		return
	}

	msgs, err := h.svc.Messages(r.Context(), id)
	if err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: list messages failed",
			slog.String("thread_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	writeJSON(w, http.StatusOK, listMessagesResponse{
		Messages: msgs,
		Total:    len(msgs),
	})
}

// sendMessageRequest is the message submission body.
type sendMessageRequest struct {
	Text string `json:"text"`
}

// SendMessage appends a message to the thread on behalf of the caller.
// POST /api/threads/{id}/messages
func (h *ThreadHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing thread id")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	uid := callerIdentity(w, r, h.ids)

	msg, err := h.svc.SendMessage(r.Context(), id, uid, req.Text)
	if err != nil {
		if status := statusForError(err); status != 0 {
			writeError(w, status, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: send message failed",
			slog.String("thread_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	writeJSON(w, http.StatusCreated, msg)
}
