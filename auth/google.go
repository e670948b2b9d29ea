package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"recipeportal/logger"
	"recipeportal/models"
	"recipeportal/utils"
)

const stateCookie = "oauth_state"

// GoogleLogin redirects to the Google consent page. The state is kept in a
// short lived cookie and checked by the callback.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.google == nil {
		utils.RespondWithError(w, http.StatusNotImplemented, "Google login is not configured")
		return
	}
	state := utils.GetUUID()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/api/auth/google",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusFound)
}

// GoogleCallback finishes the consent flow and hands the token to the
// frontend in the query string of its login page.
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if h.google == nil {
		utils.RespondWithError(w, http.StatusNotImplemented, "Google login is not configured")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/api/auth/google", MaxAge: -1})

	log := logger.FromContext(r.Context())
	fail := func(reason string, err error) {
		log.Warn("google login failed", zap.String("reason", reason), zap.Error(err))
		http.Redirect(w, r, h.frontendURL+"/login?error=google_auth_failed", http.StatusFound)
	}

	q := r.URL.Query()
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") {
		fail("state mismatch", err)
		return
	}
	if msg := q.Get("error"); msg != "" {
		fail("consent denied", fmt.Errorf("google: %s", msg))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	tok, err := h.google.Exchange(ctx, q.Get("code"))
	if err != nil {
		fail("code exchange", err)
		return
	}
	profile, err := h.fetchProfile(ctx, tok)
	if err != nil {
		fail("userinfo", err)
		return
	}

	user, err := h.users.UpsertGoogle(ctx, profile)
	if err != nil {
		fail("upsert user", err)
		return
	}
	token, err := h.tokens.Issue(user)
	if err != nil {
		fail("issue token", err)
		return
	}

	log.Info("google login", zap.String("user_id", user.ID.Hex()))
	http.Redirect(w, r, h.frontendURL+"/login?token="+url.QueryEscape(token), http.StatusFound)
}

func (h *Handler) fetchProfile(ctx context.Context, tok *oauth2.Token) (models.GoogleProfile, error) {
	var profile models.GoogleProfile

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return profile, err
	}
	resp, err := h.google.Client(ctx, tok).Do(req)
	if err != nil {
		return profile, fmt.Errorf("auth: fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("auth: userinfo status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, fmt.Errorf("auth: decode userinfo: %w", err)
	}
	profile.Email = strings.TrimSpace(profile.Email)
	if profile.ID == "" || profile.Email == "" {
		return profile, fmt.Errorf("auth: userinfo without id or email")
	}
	// Accounts are linked by email, so an unverified address must not log in.
	if !profile.VerifiedEmail {
		return profile, fmt.Errorf("auth: google email %q is not verified", profile.Email)
	}
	return profile, nil
}
