// Package auth serves account signup and login, Google sign-in, the current
// user, favorites and logout.
package auth

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"recipeportal/config"
	"recipeportal/middleware"
	"recipeportal/models"
	"recipeportal/mq"
)

// Users is the account store. db.UserStore implements it.
type Users interface {
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (models.User, error)
	ByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
	UpsertGoogle(ctx context.Context, p models.GoogleProfile) (models.User, error)
	ToggleFavorite(ctx context.Context, userID, recipeID primitive.ObjectID) (models.User, error)
	TouchLogin(ctx context.Context, id primitive.ObjectID) error
}

// Recipes resolves the recipe a favorite points at. catalog.Service implements it.
type Recipes interface {
	Get(ctx context.Context, id string) (models.Recipe, error)
}

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Options are the settings of the auth handlers.
type Options struct {
	Google      config.GoogleConfig
	FrontendURL string
	Timeout     time.Duration
	MaxBody     int64
}

type Handler struct {
	users    Users
	recipes  Recipes
	tokens   *middleware.Tokens
	events   mq.Emitter
	timeout  time.Duration
	maxBody  int64
	hashCost int

	google      *oauth2.Config // nil when Google sign-in is not configured
	userInfoURL string
	frontendURL string
}

func NewHandler(users Users, recipes Recipes, tokens *middleware.Tokens, events mq.Emitter, opts Options) *Handler {
	if events == nil {
		events = mq.Nop{}
	}
	h := &Handler{
		users:       users,
		recipes:     recipes,
		tokens:      tokens,
		events:      events,
		timeout:     opts.Timeout,
		maxBody:     opts.MaxBody,
		hashCost:    bcrypt.DefaultCost,
		userInfoURL: googleUserInfoURL,
		frontendURL: opts.FrontendURL,
	}
	if opts.Google.Enabled() {
		h.google = &oauth2.Config{
			ClientID:     opts.Google.ClientID,
			ClientSecret: opts.Google.ClientSecret,
			RedirectURL:  opts.Google.RedirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		}
	}
	return h
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// issue pairs user with a freshly signed token.
func (h *Handler) issue(user models.User) (models.AuthResponse, error) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		return models.AuthResponse{}, err
	}
	user.Normalize()
	return models.AuthResponse{User: user, Token: token}, nil
}
