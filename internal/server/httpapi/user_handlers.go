package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/soundhub/internal/server/models"
	"github.com/dmitrijs2005/soundhub/internal/server/services"
)

// refreshed re-issues the caller's credential after a role change and
// writes the standard user response.
func (h *Handler) refreshed(w http.ResponseWriter, r *http.Request, status int, body map[string]any, user *models.User) {
	token, err := h.strategy.Refresh(r.Context(), w, r, user.Identity())
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	body["user"] = toUser(user)
	if token != "" {
		body["token"] = token
	}
	writeJSON(w, status, body)
}

func (h *Handler) upgradeRole(w http.ResponseWriter, r *http.Request) {
	var in services.ChangeRoleInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	user, err := h.users.UpgradeRole(r.Context(), caller(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	h.refreshed(w, r, http.StatusOK, map[string]any{"message": "Role upgraded to " + string(user.Role)}, user)
}

func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	var in services.ListenerPreferencesInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	p, err := h.users.UpdatePreferences(r.Context(), caller(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Preferences updated successfully", "listener": toListener(p)})
}

func (h *Handler) updateArtistProfile(w http.ResponseWriter, r *http.Request) {
	var in services.ArtistProfileInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	p, err := h.users.UpdateArtistProfile(r.Context(), caller(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Artist profile updated successfully", "artist": toArtist(p)})
}
