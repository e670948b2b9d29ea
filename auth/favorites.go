package auth

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"recipeportal/errs"
	"recipeportal/logger"
	"recipeportal/models"
	"recipeportal/mq"
	"recipeportal/utils"
)

// ToggleFavorite adds the recipe to the user's favorites, or removes it.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	userID, err := primitive.ObjectIDFromHex(utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithErr(w, r, errs.Unauthorized("Invalid token"))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	recipe, err := h.recipes.Get(ctx, ps.ByName("id"))
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	user, err := h.users.ToggleFavorite(ctx, userID, recipe.ID)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	if err := h.events.Emit(ctx, mq.Event{
		Type:     mq.EventFavoriteToggled,
		EntityID: recipe.ID.Hex(),
		UserID:   userID.Hex(),
	}); err != nil {
		logger.FromContext(ctx).Warn("favorite event not published", zap.Error(err))
	}

	utils.RespondWithJSON(w, http.StatusOK, models.FavoritesResponse{
		Favorites:  user.Favorites,
		IsFavorite: user.HasFavorite(recipe.ID),
	})
}
