package api

import (
	"net/http"

	"github.com/garnizeh/buddyup/internal/db"
)

type SystemHandler struct {
	db *db.DB
}

func NewSystemHandler(d *db.DB) *SystemHandler {
	return &SystemHandler{db: d}
}

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database,omitempty"`
}

// HealthHandler reports liveness and, when a database is wired, whether it answers a ping.
func (h *SystemHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Service: "buddyup"}
	if h.db != nil {
		if err := h.db.GetConn().PingContext(r.Context()); err != nil {
			resp.Status, resp.Database = "degraded", "unreachable"
			writeJSON(w, resp, http.StatusServiceUnavailable)
			return
		}
		resp.Database = "ok"
	}
	writeJSON(w, resp, http.StatusOK)
}

func (h *SystemHandler) VersionHandler(version, buildTime string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"version": version, "buildTime": buildTime}, http.StatusOK)
	}
}
