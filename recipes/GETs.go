package recipes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"recipeportal/catalog"
	"recipeportal/utils"
)

// --- List Recipes ---
func (h *Handler) GetRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.context(r)
	defer cancel()

	recipes, err := h.catalog.List(ctx, r.URL.Query().Get("type"))
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, recipes)
}

// GetRecipe serves /api/recipes/:id. The router cannot hold static siblings
// of a wildcard, so the grouped, random and stats views are dispatched here.
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	switch id := ps.ByName("id"); id {
	case "grouped":
		h.GetGrouped(w, r, ps)
	case "random":
		h.GetRandom(w, r, ps)
	case "stats":
		h.GetStats(w, r, ps)
	default:
		ctx, cancel := h.context(r)
		defer cancel()

		recipe, err := h.catalog.Get(ctx, id)
		if err != nil {
			utils.RespondWithErr(w, r, err)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, recipe)
	}
}

// --- Grouped Recipes ---
func (h *Handler) GetGrouped(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	page, err := utils.PositiveInt(r, "page", catalog.DefaultGroupedPage)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	limit, err := utils.PositiveInt(r, "limit", catalog.DefaultGroupedLimit)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	q := r.URL.Query()
	res, err := h.catalog.ListGrouped(ctx, catalog.GroupedQuery{
		DietaryType: q.Get("type"),
		Page:        page,
		Limit:       limit,
		Cuisine:     q.Get("cuisine"),
	})
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

func (h *Handler) GetRandom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.context(r)
	defer cancel()

	recipes, err := h.catalog.Random(ctx)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, recipes)
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := h.context(r)
	defer cancel()

	stats, err := h.catalog.Stats(ctx)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, stats)
}

// GetScaled serves /api/recipes/:id/scaled?servings=N.
func (h *Handler) GetScaled(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	servings, err := utils.PositiveInt(r, "servings", 0)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	scaled, err := h.catalog.Scaled(ctx, ps.ByName("id"), servings)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, scaled)
}
