package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"recipeportal/errs"
	"recipeportal/logger"
	"recipeportal/models"
	"recipeportal/mq"
)

// NewRecipe is the body of POST /api/recipes.
type NewRecipe struct {
	Title        string   `json:"title" validate:"required"`
	Image        string   `json:"image"`
	Description  string   `json:"description" validate:"required"`
	Ingredients  []string `json:"ingredients" validate:"dive,required"`
	Instructions []string `json:"instructions" validate:"dive,required"`
	Tips         string   `json:"tips"`
	PrepTime     string   `json:"prepTime"`
	CookTime     string   `json:"cookTime"`
	Servings     string   `json:"servings"`
	Difficulty   string   `json:"difficulty"`
	Cuisine      string   `json:"cuisine"`
	DietaryType  string   `json:"dietaryType" validate:"omitempty,oneof=Veg Non-Veg"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (n *NewRecipe) trim() {
	n.Title = strings.TrimSpace(n.Title)
	n.Description = strings.TrimSpace(n.Description)
	n.Cuisine = strings.TrimSpace(n.Cuisine)
	for i := range n.Ingredients {
		n.Ingredients[i] = strings.TrimSpace(n.Ingredients[i])
	}
	for i := range n.Instructions {
		n.Instructions[i] = strings.TrimSpace(n.Instructions[i])
	}
}

// Validate checks the required fields and that list entries are not blank.
func (n *NewRecipe) Validate() error {
	n.trim()
	err := validate.Struct(n)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.InvalidArgument(err.Error())
	}
	for _, fe := range verrs {
		switch fe.StructField() {
		case "Title", "Description":
			return errs.InvalidArgument("Title and Description are required")
		case "DietaryType":
			return errs.InvalidArgument("dietaryType must be Veg or Non-Veg")
		}
		if strings.HasPrefix(fe.StructNamespace(), "NewRecipe.Ingredients") {
			return errs.InvalidArgument("ingredients must not contain empty lines")
		}
		if strings.HasPrefix(fe.StructNamespace(), "NewRecipe.Instructions") {
			return errs.InvalidArgument("instructions must not contain empty steps")
		}
	}
	return errs.InvalidArgument(verrs.Error())
}

func (n *NewRecipe) recipe() models.Recipe {
	return models.Recipe{
		Title:        n.Title,
		Image:        n.Image,
		Description:  n.Description,
		Ingredients:  n.Ingredients,
		Instructions: n.Instructions,
		Tips:         n.Tips,
		PrepTime:     n.PrepTime,
		CookTime:     n.CookTime,
		Servings:     n.Servings,
		Difficulty:   n.Difficulty,
		Cuisine:      n.Cuisine,
		DietaryType:  n.DietaryType,
	}
}

// Create validates in, resolves defaults and stores the recipe.
func (s *Service) Create(ctx context.Context, in NewRecipe) (models.Recipe, error) {
	if err := in.Validate(); err != nil {
		return models.Recipe{}, err
	}
	recipe := in.recipe()
	recipe.ApplyDefaults(s.now())

	if err := s.store.Insert(ctx, &recipe); err != nil {
		return models.Recipe{}, fmt.Errorf("catalog: insert recipe: %w", err)
	}

	if err := s.events.Emit(ctx, mq.Event{
		Type:     mq.EventRecipeCreated,
		EntityID: recipe.ID.Hex(),
	}); err != nil {
		logger.FromContext(ctx).Warn("recipe created event not published", zap.Error(err))
	}
	return recipe, nil
}
