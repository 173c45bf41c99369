package api

import (
	"net/http"

	"github.com/garnizeh/buddyup/internal/service"
	"github.com/gorilla/mux"
)

type FeedHandler struct {
	feed *service.FeedService
}

func NewFeedHandler(fs *service.FeedService) *FeedHandler {
	return &FeedHandler{feed: fs}
}

type createFeedPostRequest struct {
	Content string `json:"content"`
}

type likedResponse struct {
	Liked bool `json:"liked"`
}

func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFeedPostRequest
	if err := decodeBody(r, "create_feed_post", &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.feed.Create(r.Context(), UserIDFrom(r.Context()), req.Content)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusCreated)
}

// List pages through every post; an optional bearer token marks liked posts.
func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.feed.FindAll(r.Context(), limit, offset, UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func (h *FeedHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := pageParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.feed.FindByUser(r.Context(), mux.Vars(r)["userId"], limit, offset, UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, page, http.StatusOK)
}

func pageParams(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit")
	if err != nil {
		return 0, 0, err
	}
	offset, err := intParam(q, "offset")
	if err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.feed.FindOne(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.feed.Remove(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FeedHandler) Like(w http.ResponseWriter, r *http.Request) {
	p, err := h.feed.Like(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *FeedHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	p, err := h.feed.Unlike(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *FeedHandler) Liked(w http.ResponseWriter, r *http.Request) {
	ok, err := h.feed.HasLiked(r.Context(), mux.Vars(r)["id"], UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, likedResponse{Liked: ok}, http.StatusOK)
}
