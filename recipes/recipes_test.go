package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"recipeportal/catalog"
	"recipeportal/errs"
	"recipeportal/models"
)

type fakeStore struct {
	recipes []models.Recipe
	err     error
}

func (f *fakeStore) filter(flt catalog.Filter) []models.Recipe {
	out := []models.Recipe{}
	for _, r := range f.recipes {
		if flt.DietaryType == "" || r.DietaryType == flt.DietaryType {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeStore) Find(_ context.Context, flt catalog.Filter) ([]models.Recipe, error) {
	return f.filter(flt), f.err
}

func (f *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (models.Recipe, error) {
	if f.err != nil {
		return models.Recipe{}, f.err
	}
	for _, r := range f.recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return models.Recipe{}, errs.NotFound("Recipe not found")
}

func (f *fakeStore) Insert(_ context.Context, r *models.Recipe) error {
	if f.err != nil {
		return f.err
	}
	r.ID = primitive.NewObjectID()
	f.recipes = append(f.recipes, *r)
	return nil
}

func (f *fakeStore) Categories(_ context.Context, flt catalog.Filter) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, r := range f.filter(flt) {
		if c := r.Category(); !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, f.err
}

func (f *fakeStore) FindInCategory(_ context.Context, flt catalog.Filter, category string) ([]models.Recipe, error) {
	var out []models.Recipe
	for _, r := range f.filter(flt) {
		if r.Category() == category {
			out = append(out, r)
		}
	}
	return out, f.err
}

func (f *fakeStore) Count(_ context.Context, flt catalog.Filter) (int64, error) {
	return int64(len(f.filter(flt))), f.err
}

func (f *fakeStore) Sample(_ context.Context, n int) ([]models.Recipe, error) {
	return f.recipes[:min(n, len(f.recipes))], f.err
}

func (f *fakeStore) CategoryCounts(context.Context) ([]models.CategoryCount, error) {
	counts := map[string]int64{}
	for _, r := range f.recipes {
		counts[r.Category()]++
	}
	out := []models.CategoryCount{}
	for c, n := range counts {
		out = append(out, models.CategoryCount{Category: c, Count: n})
	}
	return out, f.err
}

func newFakeStore() *fakeStore {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recipe := func(title, cuisine, diet string, age time.Duration) models.Recipe {
		return models.Recipe{
			ID:          primitive.NewObjectID(),
			Title:       title,
			Description: title + " description",
			Ingredients: []string{"2 cups rice", "1/2 tsp salt"},
			Servings:    "4",
			Cuisine:     cuisine,
			DietaryType: diet,
			CreatedAt:   now.Add(-age),
		}
	}
	return &fakeStore{recipes: []models.Recipe{
		recipe("Dal Makhani", "Indian", models.DietaryVeg, time.Hour),
		recipe("Pad Thai", "Thai", models.DietaryNonVeg, 2*time.Hour),
		recipe("Green Curry", "Thai", models.DietaryVeg, 3*time.Hour),
	}}
}

func newTestRouter(store catalog.Store) *httprouter.Router {
	h := NewHandler(catalog.NewService(store, nil), time.Second, 1<<10)
	router := httprouter.New()
	router.GET("/api/recipes", h.GetRecipes)
	router.GET("/api/recipes/:id", h.GetRecipe)
	router.GET("/api/recipes/:id/scaled", h.GetScaled)
	router.POST("/api/recipes", h.CreateRecipe)
	return router
}

func serve(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestGetRecipes(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := serve(t, router, http.MethodGet, "/api/recipes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Len(t, decode[[]models.Recipe](t, rec), 3)

	rec = serve(t, router, http.MethodGet, "/api/recipes?type=veg", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Recipe](t, rec), 2)

	rec = serve(t, router, http.MethodGet, "/api/recipes?type=Vegan", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "type must be one of All, Veg, Non-Veg", decode[map[string]string](t, rec)["error"])
}

func TestGetRecipe(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	rec := serve(t, router, http.MethodGet, "/api/recipes/"+store.recipes[1].ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Pad Thai", decode[models.Recipe](t, rec).Title)

	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-id"} {
		rec = serve(t, router, http.MethodGet, "/api/recipes/"+id, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, id)
		assert.Equal(t, "Recipe not found", decode[map[string]string](t, rec)["error"])
	}
}

func TestGetGrouped(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := serve(t, router, http.MethodGet, "/api/recipes/grouped?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.GroupedPage](t, rec)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Indian", page.Data[0].Category)
	assert.True(t, page.HasMore)
	assert.Equal(t, int64(3), page.TotalRecipesCount)

	rec = serve(t, router, http.MethodGet, "/api/recipes/grouped?cuisine=thai", "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[models.GroupedPage](t, rec)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Thai", page.Data[0].Category)
	assert.False(t, page.HasMore)

	rec = serve(t, router, http.MethodGet, "/api/recipes/grouped?page=9", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[],"hasMore":false,"totalRecipesCount":3}`, rec.Body.String())

	for _, q := range []string{"page=0", "limit=-2", "limit=abc", "type=Vegan"} {
		rec = serve(t, router, http.MethodGet, "/api/recipes/grouped?"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestGetRandomAndStats(t *testing.T) {
	router := newTestRouter(newFakeStore())

	rec := serve(t, router, http.MethodGet, "/api/recipes/random", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Recipe](t, rec), 3)

	rec = serve(t, router, http.MethodGet, "/api/recipes/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[models.CatalogStats](t, rec)
	assert.Equal(t, int64(3), stats.TotalRecipes)
	assert.Equal(t, []string{"Indian", "Thai"}, stats.Countries)
}

func TestGetScaled(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)
	path := "/api/recipes/" + store.recipes[0].ID.Hex() + "/scaled"

	rec := serve(t, router, http.MethodGet, path+"?servings=8", "")
	require.Equal(t, http.StatusOK, rec.Code)
	scaled := decode[models.ScaledRecipe](t, rec)
	assert.Equal(t, 4, scaled.BaseServings)
	assert.Equal(t, 8, scaled.ScaledServings)
	assert.Equal(t, []string{"4 cups rice", "1 tsp salt"}, scaled.Ingredients)

	rec = serve(t, router, http.MethodGet, path, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = serve(t, router, http.MethodGet, path+"?servings=zero", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRecipe(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store)

	rec := serve(t, router, http.MethodPost, "/api/recipes",
		`{"title":" Aloo Gobi ","description":"Dry curry","ingredients":["2 potatoes"],"cuisine":"Indian","dietaryType":"Veg"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Recipe](t, rec)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, "Aloo Gobi", created.Title)
	assert.Equal(t, models.DefaultServings, created.Servings)
	assert.Equal(t, []string{}, created.Instructions)
	assert.Len(t, store.recipes, 4)

	cases := map[string]string{
		`{"description":"no title"}`:                        "Title and Description are required",
		`{"title":"x","description":"y","dietaryType":"x"}`: "dietaryType must be Veg or Non-Veg",
		`{"title":`:                                         "Invalid request body",
		``:                                                  "Request body is empty",
		`{"title":"` + strings.Repeat("a", 2048) + `"}`:     "Request body too large",
	}
	for body, msg := range cases {
		rec = serve(t, router, http.MethodPost, "/api/recipes", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, msg)
		assert.Equal(t, msg, decode[map[string]string](t, rec)["error"])
	}
	assert.Len(t, store.recipes, 4)
}

func TestStoreUnavailable(t *testing.T) {
	store := newFakeStore()
	store.err = errs.StoreUnavailable("db: find recipes", errors.New("connection refused"))
	router := newTestRouter(store)

	for _, path := range []string{"/api/recipes", "/api/recipes/grouped", "/api/recipes/stats"} {
		rec := serve(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code, path)
		body := decode[map[string]string](t, rec)
		assert.Equal(t, "Recipe store is unavailable", body["error"])
		assert.NotContains(t, rec.Body.String(), "connection refused")
	}
}
