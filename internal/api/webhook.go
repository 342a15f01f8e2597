package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/call-insights/internal/pipeline"
)

const maxWebhookBody = 1 << 20

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	h := s.eventHandler()
	if h == nil {
		writeStatus(w, http.StatusServiceUnavailable, "error", "Service not ready")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		writeStatus(w, http.StatusBadRequest, "error", "Unreadable request body")
		return
	}
	if len(bytes.TrimSpace(body)) == 0 {
		writeStatus(w, http.StatusBadRequest, "error", "Empty request body")
		return
	}

	var ev pipeline.Event
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&ev); err != nil {
		writeStatus(w, http.StatusBadRequest, "error", "Invalid JSON body")
		return
	}

	if strings.TrimSpace(ev.EventType) == "" {
		writeStatus(w, http.StatusBadRequest, "error", "event_type is required")
		return
	}

	zap.L().Info("api: webhook event",
		zap.String("event_type", ev.EventType),
		zap.String("user_agent", r.UserAgent()),
	)

	// The call runs to completion even if the caller disconnects.
	res, err := h.Handle(context.WithoutCancel(r.Context()), ev)
	switch {
	case errors.Is(err, pipeline.ErrMissingEventType):
		writeStatus(w, http.StatusBadRequest, "error", "event_type is required")
	case errors.Is(err, pipeline.ErrInvalidEvent):
		writeStatus(w, http.StatusBadRequest, "error", "call_id is required")
	case err != nil:
		zap.L().Warn("api: webhook processing failed", zap.String("call_id", res.CallID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, statusBody{
			Status:  "error",
			Message: "Failed to process webhook",
			CallID:  res.CallID,
			Outcome: string(res.Outcome),
		})
	case res.Status == pipeline.EventIgnored:
		writeJSON(w, http.StatusOK, statusBody{
			Status:  string(pipeline.EventIgnored),
			Message: res.Reason,
			CallID:  res.CallID,
		})
	default:
		writeJSON(w, http.StatusOK, statusBody{
			Status:  string(pipeline.EventSuccess),
			Message: "Webhook processed successfully",
			CallID:  res.CallID,
			Outcome: string(res.Outcome),
		})
	}
}
