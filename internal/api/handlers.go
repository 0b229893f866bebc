package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/roomgrabber/roomgrabber/internal/models"
)

// healthHandler reports liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"service": "roomgrabber"}))
}

// conversationHandler inspects or deletes the dialog state of one
// conversation, selected with the id query parameter.
func (s *Server) conversationHandler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing id query parameter"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		state, err := s.st.GetConversationState(id)
		if err != nil {
			slog.Error("Server.conversationHandler: failed to load state", "error", err, "conversation_id", id)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to load conversation state"))
			return
		}
		if state == nil {
			writeJSONResponse(w, http.StatusNotFound, models.Error("Conversation not found"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.Success(state))
	case http.MethodDelete:
		if err := s.st.DeleteConversationState(id); err != nil {
			slog.Error("Server.conversationHandler: failed to delete state", "error", err, "conversation_id", id)
			writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to delete conversation state"))
			return
		}
		writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Conversation state deleted", nil))
	default:
		w.Header().Set("Allow", "GET, DELETE")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// injectRequest is the body of the message injection endpoint.
type injectRequest struct {
	ConversationID string `json:"conversation_id"`
	From           string `json:"from,omitempty"`
	Text           string `json:"text,omitempty"`
	Type           string `json:"type,omitempty"` // defaults to "message"
}

// injectHandler queues an activity as if it had arrived from a messaging
// channel. It doubles as a plain console channel for local testing.
func (s *Server) injectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req injectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.injectHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.ConversationID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("conversation_id is required"))
		return
	}

	activityType := models.ActivityType(req.Type)
	if req.Type == "" {
		activityType = models.ActivityTypeMessage
	}
	if activityType == models.ActivityTypeMessage && req.Text == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("text is required for message activities"))
		return
	}

	from := req.From
	if from == "" {
		from = req.ConversationID
	}

	s.enqueue(models.Activity{
		Type:           activityType,
		Text:           req.Text,
		ConversationID: req.ConversationID,
		From:           from,
		Timestamp:      time.Now(),
	})
	writeJSONResponse(w, http.StatusAccepted, models.SuccessWithMessage("Activity queued", nil))
}
