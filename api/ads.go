package api

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/garnizeh/buddyup/internal/service"
	"github.com/garnizeh/buddyup/pkg/apperr"
	"github.com/gorilla/mux"
)

type AdsHandler struct {
	ads *service.AdService
}

func NewAdsHandler(ads *service.AdService) *AdsHandler {
	return &AdsHandler{ads: ads}
}

type adRoleRequest struct {
	Name   string `json:"name"`
	IsOpen *bool  `json:"isOpen"`
}

type createAdRequest struct {
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Metadata    map[string]any  `json:"metadata"`
	Tags        []string        `json:"tags"`
	Roles       []adRoleRequest `json:"roles"`
}

type setAdRoleRequest struct {
	IsOpen bool `json:"isOpen"`
}

func (h *AdsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAdRequest
	if err := decodeBody(r, "create_ad", &req); err != nil {
		writeError(w, r, err)
		return
	}

	roles := make([]service.AdRoleInput, 0, len(req.Roles))
	for _, ro := range req.Roles {
		roles = append(roles, service.AdRoleInput{Name: ro.Name, IsOpen: ro.IsOpen})
	}

	ad, err := h.ads.CreateAd(r.Context(), UserIDFrom(r.Context()), service.CreateAdInput{
		Title:       req.Title,
		Summary:     req.Summary,
		Description: req.Description,
		Location:    req.Location,
		Metadata:    req.Metadata,
		Tags:        req.Tags,
		Roles:       roles,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, ad, http.StatusCreated)
}

// splitList accepts both ?tags=a,b and repeated ?tags=a&tags=b.
func splitList(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.InvalidArg(key + " must be an integer")
	}
	return n, nil
}

// Search lists ads matching the query string filters.
func (h *AdsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q, "page")
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.ads.Search(r.Context(), service.SearchAdsInput{
		Keywords: q.Get("keywords"),
		Tags:     splitList(q, "tags"),
		Roles:    splitList(q, "roles"),
		Status:   splitList(q, "status"),
		Sort:     q.Get("sort"),
		Location: q.Get("location"),
		UserID:   q.Get("userId"),
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, res, http.StatusOK)
}

func (h *AdsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ad, err := h.ads.GetAd(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, ad, http.StatusOK)
}

func (h *AdsHandler) SetRoleOpen(w http.ResponseWriter, r *http.Request) {
	var req setAdRoleRequest
	if err := decodeBody(r, "set_ad_role", &req); err != nil {
		writeError(w, r, err)
		return
	}

	vars := mux.Vars(r)
	ad, err := h.ads.SetAdRoleOpen(r.Context(), UserIDFrom(r.Context()), vars["id"], vars["roleId"], req.IsOpen)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, ad, http.StatusOK)
}

func (h *AdsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ads.DeleteAd(r.Context(), UserIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
