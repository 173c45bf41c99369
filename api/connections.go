package api

import (
	"net/http"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/internal/service"
	"github.com/gorilla/mux"
)

type ConnectionsHandler struct {
	connections *service.ConnectionService
}

func NewConnectionsHandler(cs *service.ConnectionService) *ConnectionsHandler {
	return &ConnectionsHandler{connections: cs}
}

type createConnectionRequest struct {
	ReceiverID string `json:"receiverId"`
}

type respondConnectionRequest struct {
	Status models.ConnectionStatus `json:"status"`
}

type connectionStatusResponse struct {
	Status *models.ConnectionStatus `json:"status"`
}

func (h *ConnectionsHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req createConnectionRequest
	if err := decodeBody(r, "create_connection", &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.connections.Send(r.Context(), UserIDFrom(r.Context()), req.ReceiverID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusCreated)
}

func (h *ConnectionsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondConnectionRequest
	if err := decodeBody(r, "respond_connection", &req); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.connections.Respond(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"], req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, c, http.StatusOK)
}

func (h *ConnectionsHandler) Requests(w http.ResponseWriter, r *http.Request) {
	list, err := h.connections.Requests(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (h *ConnectionsHandler) Sent(w http.ResponseWriter, r *http.Request) {
	list, err := h.connections.Sent(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (h *ConnectionsHandler) All(w http.ResponseWriter, r *http.Request) {
	list, err := h.connections.Connections(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, list, http.StatusOK)
}

func (h *ConnectionsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.connections.Stats(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, stats, http.StatusOK)
}

func (h *ConnectionsHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.connections.Status(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, connectionStatusResponse{Status: status}, http.StatusOK)
}

func (h *ConnectionsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := h.connections.Remove(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
