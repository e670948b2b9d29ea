package routes

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"recipeportal/auth"
	"recipeportal/middleware"
	"recipeportal/ratelim"
	"recipeportal/recipes"
	"recipeportal/utils"
)

// Handlers are the route targets of the API.
type Handlers struct {
	Recipes *recipes.Handler
	Auth    *auth.Handler
	Tokens  *middleware.Tokens
	Health  Pinger
}

func RoutesWrapper(router *httprouter.Router, h Handlers, rateLimiter *ratelim.RateLimiter) {
	AddHealthRoutes(router, h.Health)
	AddRecipeRoutes(router, h.Recipes)
	AddAuthRoutes(router, h.Auth, h.Tokens, rateLimiter)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	router.MethodNotAllowed = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}
