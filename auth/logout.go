package auth

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"recipeportal/errs"
	"recipeportal/middleware"
	"recipeportal/utils"
)

// Logout revokes the bearer token until it would have expired.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		utils.RespondWithErr(w, r, errs.Unauthorized("Missing token"))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	if err := h.tokens.Revoke(ctx, claims); err != nil {
		utils.RespondWithErr(w, r, errs.Internal("auth: revoke token", err))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out successfully"})
}
