package api

import (
	"net/http"

	"github.com/garnizeh/buddyup/internal/models"
	"github.com/garnizeh/buddyup/internal/service"
	"github.com/gorilla/mux"
)

type UsersHandler struct {
	users *service.UserService
}

func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

type updateUserRequest struct {
	Name     *string `json:"name"`
	JobTitle *string `json:"jobTitle"`
	ShortBio *string `json:"shortBio"`
}

type updateProfileRequest struct {
	AboutMe     *string             `json:"aboutMe"`
	Skills      []string            `json:"skills"`
	Location    *string             `json:"location"`
	Profession  *string             `json:"profession"`
	Experience  []models.Experience `json:"experience"`
	Education   []models.Education  `json:"education"`
	SocialLinks []models.SocialLink `json:"socialLinks"`
}

func (h *UsersHandler) Current(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetUser(r.Context(), UserIDFrom(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

func (h *UsersHandler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if err := decodeBody(r, "update_user", &req); err != nil {
		writeError(w, r, err)
		return
	}

	u, err := h.users.UpdateUser(r.Context(), UserIDFrom(r.Context()), service.UpdateUserInput{
		Name:     req.Name,
		JobTitle: req.JobTitle,
		ShortBio: req.ShortBio,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

// Profile returns the caller's profile page.
func (h *UsersHandler) Profile(w http.ResponseWriter, r *http.Request) {
	h.profileView(w, r, UserIDFrom(r.Context()))
}

// PublicProfile returns another user's profile page.
func (h *UsersHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	h.profileView(w, r, mux.Vars(r)["id"])
}

func (h *UsersHandler) profileView(w http.ResponseWriter, r *http.Request, userID string) {
	view, err := h.users.ProfileView(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, view, http.StatusOK)
}

func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decodeBody(r, "update_profile", &req); err != nil {
		writeError(w, r, err)
		return
	}

	p, err := h.users.UpdateProfile(r.Context(), UserIDFrom(r.Context()), service.UpdateProfileInput{
		AboutMe:     req.AboutMe,
		Skills:      req.Skills,
		Location:    req.Location,
		Profession:  req.Profession,
		Experience:  req.Experience,
		Education:   req.Education,
		SocialLinks: req.SocialLinks,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, p, http.StatusOK)
}
