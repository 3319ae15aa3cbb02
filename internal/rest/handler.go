package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/blinkroom/chat-service/internal/api"
	"github.com/blinkroom/chat-service/internal/config"
	"github.com/blinkroom/chat-service/internal/metrics"
	"github.com/blinkroom/chat-service/internal/model"
)

type Handler struct {
	repository DBRepo
	events     EventPublisher
	validator  Validator
	lifetime   time.Duration
	fetchLimit int
}

func New(
	repo DBRepo,
	events EventPublisher,
	validator Validator,
	lifetime time.Duration,
	fetchLimit int,
) *Handler {
	return &Handler{
		repository: repo,
		events:     events,
		validator:  validator,
		lifetime:   lifetime,
		fetchLimit: fetchLimit,
	}
}

func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("GetMessages")

	limit := h.fetchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			logger.Error(fmt.Sprintf("invalid limit: %q", raw))
			h.writeError(w, "invalid limit", http.StatusBadRequest)
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	messages, err := h.repository.GetRecentMessages(r.Context(), h.lifetime, limit)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to fetch messages: %v", err))
		h.writeError(w, "failed to fetch messages", http.StatusInternalServerError)
		return
	}

	apiMessages := make([]api.Message, len(*messages))
	for i, msg := range *messages {
		apiMessages[i] = toAPIMessage(msg)
	}

	response := api.GetMessagesResponse{
		Messages: apiMessages,
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("SendMessage")

	var req api.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error(fmt.Sprintf("failed to decode request: %v", err))
		h.writeError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.validator.ValidateSendMessage(&req); err != nil {
		logger.Error(fmt.Sprintf("message validation failed: %v", err))
		h.writeError(w, fmt.Sprintf("message validation failed: %v", err), http.StatusBadRequest)
		return
	}

	var replyTo *uuid.UUID
	if req.ReplyTo != nil && *req.ReplyTo != "" {
		replyUUID := uuid.MustParse(*req.ReplyTo)
		replyTo = &replyUUID
	}

	message, err := h.repository.SaveMessage(r.Context(), strings.TrimSpace(req.Content), replyTo)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to save message: %v", err))
		h.writeError(w, "failed to save message", http.StatusInternalServerError)
		return
	}
	metrics.MessagesIngested.Inc()

	event := model.RoomEvent{
		Type:    model.EventInsert,
		Message: message,
	}
	if err = h.events.Publish(r.Context(), event); err != nil {
		// push is best effort, viewers converge via fetch
		logger.Error(fmt.Sprintf("failed to publish insert event: %v", err))
	}

	h.writeJSON(w, toAPIMessage(*message), http.StatusOK)
}

func (h *Handler) PurgeExpired(w http.ResponseWriter, r *http.Request) {
	logger := logger_lib.FromContext(r.Context(), config.KeyLogger)
	logger.AddFuncName("PurgeExpired")

	ids, err := h.repository.PurgeExpired(r.Context(), h.lifetime)
	if err != nil {
		logger.Error(fmt.Sprintf("failed to purge expired messages: %v", err))
		h.writeError(w, "failed to purge expired messages", http.StatusInternalServerError)
		return
	}

	if len(ids) > 0 {
		metrics.MessagesPurged.Add(float64(len(ids)))

		event := model.RoomEvent{
			Type: model.EventDelete,
			IDs:  ids,
		}
		if err = h.events.Publish(r.Context(), event); err != nil {
			logger.Error(fmt.Sprintf("failed to publish delete event: %v", err))
		}
	}

	response := api.PurgeResponse{
		Purged: len(ids),
	}

	h.writeJSON(w, response, http.StatusOK)
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.repository.Ping(r.Context()); err != nil {
		h.writeError(w, "store not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// ----------------------------- helpers -----------------------------

func toAPIMessage(msg model.Message) api.Message {
	var replyTo *string
	if msg.ReplyTo != nil {
		target := msg.ReplyTo.String()
		replyTo = &target
	}

	return api.Message{
		Id:        msg.ID.String(),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.Format(time.RFC3339Nano),
		ReplyTo:   replyTo,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(api.Error{Error: message})
}
