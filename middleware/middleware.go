package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"recipeportal/config"
	"recipeportal/errs"
	"recipeportal/globals"
	"recipeportal/logger"
	"recipeportal/models"
	"recipeportal/rdx"
	"recipeportal/utils"
)

// JWT claims
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies the HS256 bearer tokens of the API.
type Tokens struct {
	secret    []byte
	ttl       time.Duration
	issuer    string
	blacklist rdx.Blacklist
	now       func() time.Time
}

func NewTokens(cfg config.JWTConfig, blacklist rdx.Blacklist) *Tokens {
	return &Tokens{
		secret:    []byte(cfg.Secret),
		ttl:       cfg.Expiration,
		issuer:    cfg.Issuer,
		blacklist: blacklist,
		now:       time.Now,
	}
}

// Issue signs a token for user with a fresh id.
func (t *Tokens) Issue(user models.User) (string, error) {
	now := t.now()
	claims := &Claims{
		UserID: user.ID.Hex(),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.GetUUID(),
			Subject:   user.ID.Hex(),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("middleware: sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies raw and rejects revoked tokens.
func (t *Tokens) Parse(ctx context.Context, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.Unauthorized("Token expired")
		}
		return nil, errs.Unauthorized("Invalid token")
	}
	if claims.UserID == "" {
		return nil, errs.Unauthorized("Invalid token")
	}

	revoked, err := t.blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, errs.StoreUnavailable("middleware: check revocation", err)
	}
	if revoked {
		return nil, errs.Unauthorized("Token revoked")
	}
	return claims, nil
}

// Revoke blacklists the token until it would have expired.
func (t *Tokens) Revoke(ctx context.Context, claims *Claims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	return t.blacklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Sub(t.now()))
}

// bearer extracts the token of an "Authorization: Bearer <token>" header.
func bearer(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errs.Unauthorized("Missing token")
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", errs.Unauthorized("Invalid token format")
	}
	return strings.TrimSpace(token), nil
}

// Authenticate rejects requests without a valid bearer token and stores the
// user id and claims in the request context.
func (t *Tokens) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		raw, err := bearer(r)
		if err != nil {
			utils.RespondWithErr(w, r, err)
			return
		}
		claims, err := t.Parse(r.Context(), raw)
		if err != nil {
			utils.RespondWithErr(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, globals.ClaimsKey, claims)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("user_id", claims.UserID)))
		next(w, r.WithContext(ctx), ps)
	}
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(globals.ClaimsKey).(*Claims)
	return claims, ok
}
