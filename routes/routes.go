package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipeportal/auth"
	"recipeportal/logger"
	"recipeportal/middleware"
	"recipeportal/ratelim"
	"recipeportal/recipes"
	"recipeportal/utils"
)

// Pinger reports whether the document store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

func AddHealthRoutes(router *httprouter.Router, db Pinger) {
	router.GET("/health", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn("health check failed", zap.Error(err))
			utils.RespondWithJSON(w, http.StatusServiceUnavailable, utils.M{"status": "unavailable"})
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"status": "ok"})
	})
}

// AddRecipeRoutes registers /api/recipes. grouped, random and stats share
// the :id route, see recipes.Handler.GetRecipe.
func AddRecipeRoutes(router *httprouter.Router, h *recipes.Handler) {
	router.GET("/api/recipes", h.GetRecipes)
	router.POST("/api/recipes", h.CreateRecipe)
	router.GET("/api/recipes/:id", h.GetRecipe)
	router.GET("/api/recipes/:id/scaled", h.GetScaled)
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, tokens *middleware.Tokens, rateLimiter *ratelim.RateLimiter) {
	router.POST("/api/auth/signup", rateLimiter.Limit(h.Signup))
	router.POST("/api/auth/login", rateLimiter.Limit(h.Login))
	router.GET("/api/auth/google", h.GoogleLogin)
	router.GET("/api/auth/google/callback", h.GoogleCallback)
	router.GET("/api/auth/me", tokens.Authenticate(h.Me))
	router.POST("/api/auth/favorites/:id", tokens.Authenticate(h.ToggleFavorite))
	router.POST("/api/auth/logout", tokens.Authenticate(h.Logout))
}
