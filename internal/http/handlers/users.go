package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-microblog/internal/http/errors"
	"github.com/pribylovaa/go-microblog/internal/models"
)

type profileDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Followers []userRef `json:"followers"`
	Following []userRef `json:"following"`
}

type userResponse struct {
	Result bool       `json:"result"`
	User   profileDTO `json:"user"`
}

func refs(users []models.User) []userRef {
	out := make([]userRef, 0, len(users))
	for _, u := range users {
		out = append(out, userRef{ID: u.ID, Name: u.Name})
	}
	return out
}

func profileFromModel(p *models.Profile) userResponse {
	return userResponse{
		Result: true,
		User: profileDTO{
			ID:        p.User.ID,
			Name:      p.User.Name,
			Followers: refs(p.Followers),
			Following: refs(p.Following),
		},
	}
}

// Me — GET /users/me.
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	me, err := subject(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.writeProfile(w, r, me)
}

// GetUser — GET /users/{id}.
func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	h.writeProfile(w, r, id)
}

// Follow — POST /users/{id}/follow.
func (h *Handlers) Follow(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, http.StatusCreated, h.svc.Follow)
}

// Unfollow — DELETE /users/{id}/follow.
func (h *Handlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.userAction(w, r, http.StatusOK, h.svc.Unfollow)
}

func (h *Handlers) writeProfile(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	p, err := h.svc.Profile(r.Context(), id)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, profileFromModel(p))
}

// pairAction — операция над парой (объект из пути, текущий пользователь).
type pairAction func(ctx context.Context, target, me uuid.UUID) error

// tweetAction вызывает fn(tweetID, me) и отвечает {result:true}.
func (h *Handlers) tweetAction(w http.ResponseWriter, r *http.Request, status int, fn pairAction) {
	me, err := subject(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := fn(r.Context(), id, me); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, status, okResp)
}

// userAction вызывает fn(me, userID): подписчик идёт первым.
func (h *Handlers) userAction(w http.ResponseWriter, r *http.Request, status int, fn pairAction) {
	me, err := subject(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id, err := pathUUID(r, "id")
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	if err := fn(r.Context(), me, id); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, status, okResp)
}
