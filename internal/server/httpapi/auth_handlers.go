package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/soundhub/internal/server/auth"
	"github.com/dmitrijs2005/soundhub/internal/server/services"
)

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	user, err := h.users.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}

	token, err := h.strategy.Establish(r.Context(), w, user.Identity())
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Message: "User registered successfully", Token: token, User: toUser(user)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	user, err := h.users.Login(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}

	token, err := h.strategy.Establish(r.Context(), w, user.Identity())
	if err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Message: "Login successful", Token: token, User: toUser(user)})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.strategy.Revoke(r.Context(), w, r); err != nil {
		h.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Logout successful"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	p, err := h.users.Profile(r.Context(), caller(r).UserID)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": profileJSON{
			userJSON: toUser(p.User),
			Listener: toListener(p.Listener),
			Artist:   toArtist(p.Artist),
		},
	})
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	var in services.UpdateProfileInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), caller(r).UserID, in)
	if err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Profile updated successfully", "user": toUser(user)})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	var in services.ChangePasswordInput
	if !decodeOrFail(w, r, &in) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), caller(r).UserID, in); err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Password changed successfully"})
}

func (h *Handler) deleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), caller(r).UserID); err != nil {
		h.writeError(w, r, err, "User not found")
		return
	}
	if err := h.strategy.Revoke(r.Context(), w, r); err != nil {
		h.logger.Warn(r.Context(), "revoke after delete", "error", err.Error())
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Account deleted successfully"})
}

// session reports who, if anyone, the request is authenticated as.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"authenticated": true,
		"user":          identityJSON{UserID: id.UserID, Username: id.Username, Role: string(id.Role)},
	})
}
