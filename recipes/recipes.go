// Package recipes holds the HTTP handlers of /api/recipes.
package recipes

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipeportal/catalog"
	"recipeportal/logger"
	"recipeportal/utils"
)

type Handler struct {
	catalog *catalog.Service
	timeout time.Duration
	maxBody int64
}

// NewHandler serves svc. Every store round trip of a request shares timeout.
func NewHandler(svc *catalog.Service, timeout time.Duration, maxBody int64) *Handler {
	return &Handler{catalog: svc, timeout: timeout, maxBody: maxBody}
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// --- Create Recipe ---
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body catalog.NewRecipe
	if err := utils.DecodeJSON(w, r, h.maxBody, &body); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	recipe, err := h.catalog.Create(ctx, body)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	logger.FromContext(ctx).Info("recipe created",
		zap.String("id", recipe.ID.Hex()),
		zap.String("cuisine", recipe.Category()),
	)
	utils.RespondWithJSON(w, http.StatusCreated, recipe)
}
