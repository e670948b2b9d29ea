package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipeportal/catalog"
	"recipeportal/errs"
	"recipeportal/models"
)

// trimmed is the field value trimmed of whitespace, "" when missing or null.
func trimmed(field string) bson.M {
	return bson.M{"$trim": bson.M{"input": bson.M{"$ifNull": bson.A{field, ""}}}}
}

func nonEmpty(expr any) bson.M {
	return bson.M{"$gt": bson.A{bson.M{"$strLenCP": expr}, 0}}
}

// categoryExpr computes models.Recipe.Category server side: cuisine, then
// strArea, then "Unknown".
var categoryExpr = bson.M{"$switch": bson.D{
	{Key: "branches", Value: bson.A{
		bson.D{{Key: "case", Value: nonEmpty(trimmed("$cuisine"))}, {Key: "then", Value: trimmed("$cuisine")}},
		bson.D{{Key: "case", Value: nonEmpty(trimmed("$strArea"))}, {Key: "then", Value: trimmed("$strArea")}},
	}},
	{Key: "default", Value: models.CuisineUnknown},
}}

var newestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}

// RecipeStore is the MongoDB implementation of catalog.Store.
type RecipeStore struct {
	coll *mongo.Collection
}

func NewRecipeStore(coll *mongo.Collection) *RecipeStore {
	return &RecipeStore{coll: coll}
}

var _ catalog.Store = (*RecipeStore)(nil)

func recipeFilter(f catalog.Filter) bson.M {
	if f.DietaryType == "" {
		return bson.M{}
	}
	return bson.M{"dietaryType": f.DietaryType}
}

func (s *RecipeStore) find(ctx context.Context, filter bson.M) ([]models.Recipe, error) {
	cursor, err := s.coll.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, errs.StoreUnavailable("db: find recipes", err)
	}
	defer cursor.Close(ctx)

	recipes := []models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, errs.StoreUnavailable("db: decode recipes", err)
	}
	return recipes, nil
}

// Find returns the candidate set newest first.
func (s *RecipeStore) Find(ctx context.Context, f catalog.Filter) ([]models.Recipe, error) {
	return s.find(ctx, recipeFilter(f))
}

func (s *RecipeStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.Recipe, error) {
	var recipe models.Recipe
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&recipe)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return recipe, errs.NotFound("Recipe not found")
	}
	if err != nil {
		return recipe, errs.StoreUnavailable("db: find recipe", err)
	}
	return recipe, nil
}

// Insert assigns an id when r has none and stores r.
func (s *RecipeStore) Insert(ctx context.Context, r *models.Recipe) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if _, err := s.coll.InsertOne(ctx, r); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Conflict("Recipe already exists")
		}
		return errs.StoreUnavailable("db: insert recipe", err)
	}
	return nil
}

// InsertMany stores recipes unordered, so one bad document does not stop
// the rest. It returns how many were written.
func (s *RecipeStore) InsertMany(ctx context.Context, recipes []models.Recipe) (int, error) {
	if len(recipes) == 0 {
		return 0, nil
	}
	docs := make([]any, len(recipes))
	for i := range recipes {
		if recipes[i].ID.IsZero() {
			recipes[i].ID = primitive.NewObjectID()
		}
		docs[i] = recipes[i]
	}
	res, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		var bwe mongo.BulkWriteException
		if errors.As(err, &bwe) && bwe.WriteConcernError == nil {
			rejected := len(bwe.WriteErrors)
			return len(recipes) - rejected, errs.StoreUnavailable(fmt.Sprintf("db: insert recipes: %d rejected", rejected), err)
		}
		return 0, errs.StoreUnavailable("db: insert recipes", err)
	}
	return len(res.InsertedIDs), nil
}

// DeleteAll empties the collection and returns how many documents it removed.
func (s *RecipeStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, errs.StoreUnavailable("db: delete recipes", err)
	}
	return res.DeletedCount, nil
}

// Categories returns the distinct effective categories of the candidate set.
func (s *RecipeStore) Categories(ctx context.Context, f catalog.Filter) ([]string, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: recipeFilter(f)}},
		{{Key: "$group", Value: bson.M{"_id": categoryExpr}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errs.StoreUnavailable("db: distinct categories", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Category string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, errs.StoreUnavailable("db: decode categories", err)
	}
	categories := make([]string, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.Category)
	}
	return categories, nil
}

// FindInCategory returns the members of one effective category, newest first.
func (s *RecipeStore) FindInCategory(ctx context.Context, f catalog.Filter, category string) ([]models.Recipe, error) {
	filter := recipeFilter(f)
	filter["$expr"] = bson.M{"$eq": bson.A{categoryExpr, category}}
	return s.find(ctx, filter)
}

func (s *RecipeStore) Count(ctx context.Context, f catalog.Filter) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, recipeFilter(f))
	if err != nil {
		return 0, errs.StoreUnavailable("db: count recipes", err)
	}
	return n, nil
}

// Sample returns up to n recipes chosen by $sample.
func (s *RecipeStore) Sample(ctx context.Context, n int) ([]models.Recipe, error) {
	cursor, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": n}}},
	})
	if err != nil {
		return nil, errs.StoreUnavailable("db: sample recipes", err)
	}
	defer cursor.Close(ctx)

	recipes := []models.Recipe{}
	if err := cursor.All(ctx, &recipes); err != nil {
		return nil, errs.StoreUnavailable("db: decode recipes", err)
	}
	return recipes, nil
}

// CategoryCounts counts recipes per effective category.
func (s *RecipeStore) CategoryCounts(ctx context.Context) ([]models.CategoryCount, error) {
	cursor, err := s.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": categoryExpr, "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, errs.StoreUnavailable("db: count categories", err)
	}
	defer cursor.Close(ctx)

	counts := []models.CategoryCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, errs.StoreUnavailable("db: decode category counts", err)
	}
	return counts, nil
}
