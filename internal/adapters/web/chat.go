package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"hr-assistant/internal/ai"
	"hr-assistant/internal/app"
)

const internalErrorMessage = "An internal error occurred while processing your request."

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Signal  string `json:"signal"`
	Message string `json:"message"`
}

type historyResponse struct {
	Messages []ai.Message `json:"messages"`
}

// chatMessage handles POST /api/v1/chat.
func (h *Handler) chatMessage(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	res, err := h.svc.Chat(r.Context(), app.ChatRequest{UserID: claims.UserID, Message: req.Message})
	if err != nil {
		if errors.Is(err, app.ErrInvalidRequest) {
			writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
			return
		}
		h.logger.Error("chat failed",
			zap.String("request_id", requestIDFromContext(r.Context())),
			zap.String("user_id", claims.UserID),
			zap.Error(err),
		)
		writeErrorResponse(w, r, errorResponse{
			Signal: app.SignalError,
			Error:  internalErrorMessage,
			Code:   "INTERNAL_ERROR",
		}, http.StatusInternalServerError)
		return
	}

	writeJSON(w, chatResponse{Signal: res.Signal, Message: res.Message})
}

// chatHistory handles GET /api/v1/chat/history.
func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	res, err := h.svc.History(r.Context(), claims.UserID)
	if err != nil {
		h.logger.Warn("history unavailable", zap.String("user_id", claims.UserID), zap.Error(err))
		writeError(w, r, "conversation history is unavailable", "HISTORY_UNAVAILABLE", http.StatusServiceUnavailable)
		return
	}
	msgs := res.Messages
	if msgs == nil {
		msgs = []ai.Message{}
	}
	writeJSON(w, historyResponse{Messages: msgs})
}
