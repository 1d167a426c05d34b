package handlers

import (
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/go-microblog/internal/http/errors"
	"github.com/pribylovaa/go-microblog/internal/models"
)

type createTweetRequest struct {
	TweetData     string  `json:"tweet_data"`
	TweetMediaIDs []int64 `json:"tweet_media_ids"`
}

type createTweetResponse struct {
	Result  bool      `json:"result"`
	TweetID uuid.UUID `json:"tweet_id"`
}

type userRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type likeDTO struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
}

type tweetDTO struct {
	ID          uuid.UUID `json:"id"`
	Content     string    `json:"content"`
	Attachments []string  `json:"attachments"`
	Author      userRef   `json:"author"`
	Likes       []likeDTO `json:"likes"`
}

type feedResponse struct {
	Result bool       `json:"result"`
	Tweets []tweetDTO `json:"tweets"`
}

// feedFromModels собирает ответ ленты; пустые списки отдаются как [], а не null.
func feedFromModels(items []models.FeedItem) feedResponse {
	out := feedResponse{Result: true, Tweets: make([]tweetDTO, 0, len(items))}

	for _, it := range items {
		likes := make([]likeDTO, 0, len(it.Likes))
		for _, l := range it.Likes {
			likes = append(likes, likeDTO{UserID: l.UserID, Name: l.Name})
		}

		attachments := it.Attachments
		if attachments == nil {
			attachments = []string{}
		}

		out.Tweets = append(out.Tweets, tweetDTO{
			ID:          it.Tweet.ID,
			Content:     it.Tweet.Content,
			Attachments: attachments,
			Author:      userRef{ID: it.Author.ID, Name: it.Author.Name},
			Likes:       likes,
		})
	}

	return out
}

// CreateTweet — POST /tweets.
func (h *Handlers) CreateTweet(w http.ResponseWriter, r *http.Request) {
	me, err := subject(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	var in createTweetRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	id, err := h.svc.CreateTweet(r.Context(), me, in.TweetData, in.TweetMediaIDs)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, createTweetResponse{Result: true, TweetID: id})
}

// DeleteTweet — DELETE /tweets/{id}.
func (h *Handlers) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	h.tweetAction(w, r, http.StatusOK, h.svc.DeleteTweet)
}

// LikeTweet — POST /tweets/{id}/like.
func (h *Handlers) LikeTweet(w http.ResponseWriter, r *http.Request) {
	h.tweetAction(w, r, http.StatusCreated, h.svc.Like)
}

// UnlikeTweet — DELETE /tweets/{id}/like.
func (h *Handlers) UnlikeTweet(w http.ResponseWriter, r *http.Request) {
	h.tweetAction(w, r, http.StatusOK, h.svc.Unlike)
}

// Feed — GET /tweets?limit=&offset=.
func (h *Handlers) Feed(w http.ResponseWriter, r *http.Request) {
	me, err := subject(r)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	items, err := h.svc.Feed(r.Context(), me, limit, offset)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, feedFromModels(items))
}
