package httpapi

import (
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/services"
	"github.com/gorilla/mux"
)

// activityPage parses pagination for activity listings, writing a 400 on
// bad input.
func activityPage(w http.ResponseWriter, r *http.Request) (models.Page, bool) {
	limit, offset, msg := pagination(r, defaultActivityLimit)
	if msg != "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return models.Page{}, false
	}
	return models.Page{Limit: limit, Offset: offset}, true
}

func pageBody(page models.Page, count int) map[string]int {
	return map[string]int{"limit": page.Limit, "offset": page.Offset, "count": count}
}

func artistIDVar(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["artist_id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid artist id"})
		return 0, false
	}
	return id, true
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.activity.Stats(r.Context(), caller(r).UserID)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": toStats(st)})
}

func (h *Handler) playHistory(w http.ResponseWriter, r *http.Request) {
	page, ok := activityPage(w, r)
	if !ok {
		return
	}

	plays, err := h.activity.History(r.Context(), caller(r).UserID, page)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"history":    mapSlice(plays, toPlay),
		"pagination": pageBody(page, len(plays)),
	})
}

func (h *Handler) recordPlay(w http.ResponseWriter, r *http.Request) {
	var in services.RecordPlayInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	play, err := h.activity.RecordPlay(r.Context(), caller(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Play history recorded", "play": toPlay(play)})
}

func (h *Handler) following(w http.ResponseWriter, r *http.Request) {
	page, ok := activityPage(w, r)
	if !ok {
		return
	}

	list, err := h.activity.Following(r.Context(), caller(r).UserID, page)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"following":  mapSlice(list, toFollowedArtist),
		"pagination": pageBody(page, len(list)),
	})
}

func (h *Handler) follow(w http.ResponseWriter, r *http.Request) {
	artistID, ok := artistIDVar(w, r)
	if !ok {
		return
	}
	if err := h.activity.Follow(r.Context(), caller(r).UserID, artistID); err != nil {
		h.writeError(w, r, err, "Artist not found")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Successfully followed artist"})
}

func (h *Handler) unfollow(w http.ResponseWriter, r *http.Request) {
	artistID, ok := artistIDVar(w, r)
	if !ok {
		return
	}
	if err := h.activity.Unfollow(r.Context(), caller(r).UserID, artistID); err != nil {
		h.writeError(w, r, err, "Not following this artist")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Successfully unfollowed artist"})
}

func (h *Handler) reactions(w http.ResponseWriter, r *http.Request) {
	page, ok := activityPage(w, r)
	if !ok {
		return
	}
	kind, err := models.ParseReactableType(r.URL.Query().Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: `Type must be either "Song" or "Artwork"`})
		return
	}

	list, err := h.activity.Reactions(r.Context(), caller(r).UserID, kind, page)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reactions":  mapSlice(list, toReaction),
		"pagination": pageBody(page, len(list)),
	})
}

func (h *Handler) react(w http.ResponseWriter, r *http.Request) {
	var in services.ReactInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	re, err := h.activity.React(r.Context(), caller(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Reaction saved", "reaction": toReaction(re)})
}
