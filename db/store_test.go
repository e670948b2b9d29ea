package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"recipeportal/catalog"
	"recipeportal/errs"
	"recipeportal/models"
)

const ns = "recipe_portal.recipes"

func recipeDoc(id primitive.ObjectID, title, cuisine string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "title", Value: title},
		{Key: "cuisine", Value: cuisine},
		{Key: "ingredients", Value: bson.A{"1 cup rice"}},
		{Key: "createdAt", Value: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
}

func TestRecipeStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find decodes recipes", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			recipeDoc(first, "Dal", "Indian"),
			recipeDoc(second, "Pizza", "Italian"),
		))

		got, err := store.Find(ctx, catalog.Filter{DietaryType: models.DietaryVeg})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, first, got[0].ID)
		assert.Equal(mt, "Dal", got[0].Title)
		assert.Equal(mt, []string{"1 cup rice"}, got[0].Ingredients)
		assert.Equal(mt, "Italian", got[1].Category())
	})

	mt.Run("find by id", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, recipeDoc(id, "Dal", "Indian")))

		got, err := store.FindByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, "Dal", got.Title)
	})

	mt.Run("find by id reports missing recipes", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.FindByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, errs.ErrNotFound)
	})

	mt.Run("insert assigns an id", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		r := models.Recipe{Title: "Soup"}
		require.NoError(mt, store.Insert(ctx, &r))
		assert.False(mt, r.ID.IsZero())
	})

	mt.Run("insert duplicate is a conflict", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		err := store.Insert(ctx, &models.Recipe{Title: "Soup"})
		assert.ErrorIs(mt, err, errs.ErrConflict)
	})

	mt.Run("insert many", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}))

		recipes := []models.Recipe{{Title: "A"}, {Title: "B"}}
		n, err := store.InsertMany(ctx, recipes)
		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
		assert.False(mt, recipes[1].ID.IsZero())
	})

	mt.Run("categories", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Thai"}},
			bson.D{{Key: "_id", Value: "Indian"}},
		))

		got, err := store.Categories(ctx, catalog.Filter{})
		require.NoError(mt, err)
		assert.ElementsMatch(mt, []string{"Indian", "Thai"}, got)
	})

	mt.Run("count", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: 7}}))

		n, err := store.Count(ctx, catalog.Filter{DietaryType: models.DietaryNonVeg})
		require.NoError(mt, err)
		assert.Equal(mt, int64(7), n)
	})

	mt.Run("category counts", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "Indian"}, {Key: "count", Value: 3}},
			bson.D{{Key: "_id", Value: "Unknown"}, {Key: "count", Value: 1}},
		))

		got, err := store.CategoryCounts(ctx)
		require.NoError(mt, err)
		assert.Equal(mt, []models.CategoryCount{{Category: "Indian", Count: 3}, {Category: "Unknown", Count: 1}}, got)
	})

	mt.Run("sample", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			recipeDoc(primitive.NewObjectID(), "Dal", "Indian"),
		))

		got, err := store.Sample(ctx, 5)
		require.NoError(mt, err)
		assert.Len(mt, got, 1)
	})

	mt.Run("driver errors are store unavailable", func(mt *mtest.T) {
		store := NewRecipeStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 2, Name: "BadValue", Message: "bad value",
		}))

		_, err := store.Count(ctx, catalog.Filter{})
		require.ErrorIs(mt, err, errs.ErrStoreUnavailable)
		assert.Equal(mt, "Recipe store is unavailable", errs.PublicMessage(err))
	})
}

func TestUserStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	const usersNS = "recipe_portal.users"

	mt.Run("create normalizes the email", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		u := models.User{Name: "Asha", Email: "  Asha@Example.COM "}
		require.NoError(mt, store.Create(ctx, &u))
		assert.Equal(mt, "asha@example.com", u.Email)
		assert.False(mt, u.ID.IsZero())
		assert.NotNil(mt, u.Favorites)
		assert.False(mt, u.CreatedAt.IsZero())
	})

	mt.Run("create with a taken email", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error",
		}))

		err := store.Create(ctx, &models.User{Email: "a@b.c"})
		assert.ErrorIs(mt, err, errs.ErrConflict)
	})

	mt.Run("by email not found", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := store.ByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(mt, err, errs.ErrNotFound)
	})

	mt.Run("by id", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "name", Value: "Asha"},
			{Key: "password", Value: "$2a$10$hash"},
		}))

		got, err := store.ByID(ctx, id)
		require.NoError(mt, err)
		assert.Equal(mt, "Asha", got.Name)
		assert.Equal(mt, "$2a$10$hash", got.Password)
		assert.NotNil(mt, got.Favorites)
	})

	mt.Run("toggle favorite returns the updated user", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		userID, recipeID := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: userID},
			{Key: "favorites", Value: bson.A{recipeID}},
		}}))

		got, err := store.ToggleFavorite(ctx, userID, recipeID)
		require.NoError(mt, err)
		assert.True(mt, got.HasFavorite(recipeID))
	})

	mt.Run("upsert google user", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "name", Value: "Asha"},
			{Key: "email", Value: "asha@example.com"},
			{Key: "googleId", Value: "g-1"},
		}}))

		got, err := store.UpsertGoogle(ctx, models.GoogleProfile{ID: "g-1", Email: "Asha@example.com", VerifiedEmail: true, Name: "Asha"})
		require.NoError(mt, err)
		assert.Equal(mt, "g-1", got.GoogleID)
		assert.Empty(mt, got.Favorites)
		assert.Len(mt, upsertMatch(mt), 2)
	})

	mt.Run("upsert google user with unverified email matches the google id only", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: primitive.NewObjectID()},
			{Key: "email", Value: "asha@example.com"},
			{Key: "googleId", Value: "g-2"},
		}}))

		_, err := store.UpsertGoogle(ctx, models.GoogleProfile{ID: "g-2", Email: "asha@example.com"})
		require.NoError(mt, err)

		match := upsertMatch(mt)
		require.Len(mt, match, 1)
		assert.Equal(mt, "g-2", match[0].Document().Lookup("googleId").StringValue())
	})

	mt.Run("insert many skips existing users", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 1, Code: 11000, Message: "E11000 duplicate key error",
		}))

		inserted, skipped, err := store.InsertMany(ctx, []models.User{
			{ID: primitive.NewObjectID(), Email: "a@example.com"},
			{ID: primitive.NewObjectID(), Email: "b@example.com"},
		})
		require.NoError(mt, err)
		assert.Equal(mt, 1, inserted)
		assert.Equal(mt, 1, skipped)
	})

	mt.Run("insert many fails on other write errors", func(mt *mtest.T) {
		store := NewUserStore(mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 121, Message: "Document failed validation",
		}))

		_, _, err := store.InsertMany(ctx, []models.User{{ID: primitive.NewObjectID()}})
		assert.ErrorIs(mt, err, errs.ErrStoreUnavailable)
	})
}

func TestBatches(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Batches(items, 2))
	assert.Equal(t, [][]int{{1, 2, 3, 4, 5}}, Batches(items, 100))
	assert.Empty(t, Batches([]int{}, 3))
	assert.Len(t, Batches(items, 0), 5)
}

// upsertMatch returns the $or clauses of the last findAndModify sent.
func upsertMatch(mt *mtest.T) []bson.RawValue {
	mt.Helper()
	started := mt.GetStartedEvent()
	require.NotNil(mt, started)
	require.Equal(mt, "findAndModify", started.CommandName)
	clauses, err := started.Command.Lookup("query", "$or").Array().Values()
	require.NoError(mt, err)
	return clauses
}
