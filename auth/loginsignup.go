package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"recipeportal/db"
	"recipeportal/errs"
	"recipeportal/logger"
	"recipeportal/models"
	"recipeportal/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (s *signupRequest) validate() error {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = db.NormalizeEmail(s.Email)

	err := validate.Struct(s)
	var verrs validator.ValidationErrors
	if err == nil || !errors.As(err, &verrs) {
		return err
	}
	fe := verrs[0]
	switch {
	case fe.Tag() == "required":
		return errs.InvalidArgument("Name, email and password are required")
	case fe.Field() == "Email":
		return errs.InvalidArgument("Invalid email address")
	default:
		return errs.InvalidArgument("Password must be at least 6 characters")
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var errInvalidCredentials = errs.Unauthorized("Invalid credentials")

// Signup creates a password account and logs it in.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req signupRequest
	if err := utils.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.hashCost)
	if err != nil {
		utils.RespondWithErr(w, r, errs.Internal("auth: hash password", err))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
	}
	if err := h.users.Create(ctx, &user); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}

	res, err := h.issue(user)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	logger.FromContext(ctx).Info("user registered", zap.String("user_id", user.ID.Hex()))
	utils.RespondWithJSON(w, http.StatusCreated, res)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, h.maxBody, &req); err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		utils.RespondWithErr(w, r, errs.InvalidArgument("Email and password are required"))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	user, err := h.users.ByEmail(ctx, db.NormalizeEmail(req.Email))
	if errors.Is(err, errs.ErrNotFound) {
		utils.RespondWithErr(w, r, errInvalidCredentials)
		return
	}
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	// Accounts created through Google have no password.
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		utils.RespondWithErr(w, r, errInvalidCredentials)
		return
	}

	if err := h.users.TouchLogin(ctx, user.ID); err != nil {
		logger.FromContext(ctx).Warn("last login not recorded", zap.Error(err))
	}

	res, err := h.issue(user)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, res)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	id, err := primitive.ObjectIDFromHex(utils.GetUserIDFromRequest(r))
	if err != nil {
		utils.RespondWithErr(w, r, errs.Unauthorized("Invalid token"))
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	user, err := h.users.ByID(ctx, id)
	if err != nil {
		utils.RespondWithErr(w, r, err)
		return
	}
	user.Normalize()
	utils.RespondWithJSON(w, http.StatusOK, user)
}
