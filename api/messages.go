package api

import (
	"net/http"

	"github.com/garnizeh/buddyup/internal/service"
	"github.com/gorilla/mux"
)

type MessagesHandler struct {
	messages *service.MessageService
}

func NewMessagesHandler(ms *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: ms}
}

type createMessageRequest struct {
	ReceiverID string `json:"receiverId"`
	Type       string `json:"type"`
	JobTitle   string `json:"jobTitle"`
	Content    string `json:"content"`
}

type updateMessageRequest struct {
	Seen *bool `json:"seen"`
}

func (h *MessagesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := decodeBody(r, "create_message", &req); err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.messages.Create(r.Context(), UserIDFrom(r.Context()), service.CreateMessageInput{
		ReceiverID: req.ReceiverID,
		Type:       req.Type,
		JobTitle:   req.JobTitle,
		Content:    req.Content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, m, http.StatusCreated)
}

func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.messages.FindAll(r.Context(), UserIDFrom(r.Context()), r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (h *MessagesHandler) Sent(w http.ResponseWriter, r *http.Request) {
	list, err := h.messages.FindBySender(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (h *MessagesHandler) Received(w http.ResponseWriter, r *http.Request) {
	list, err := h.messages.FindByReceiver(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (h *MessagesHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.messages.FindOne(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, m, http.StatusOK)
}

func (h *MessagesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateMessageRequest
	if err := decodeBody(r, "update_message", &req); err != nil {
		writeError(w, r, err)
		return
	}

	m, err := h.messages.Update(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()), service.UpdateMessageInput{Seen: req.Seen})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, m, http.StatusOK)
}

func (h *MessagesHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	m, err := h.messages.MarkSeen(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, m, http.StatusOK)
}

func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.messages.Remove(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
