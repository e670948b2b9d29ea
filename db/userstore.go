package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"recipeportal/errs"
	"recipeportal/models"
)

const duplicateKeyCode = 11000

type UserStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserStore(coll *mongo.Collection) *UserStore {
	return &UserStore{coll: coll, now: time.Now}
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	err := s.coll.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, errs.NotFound("User not found")
	}
	if err != nil {
		return user, errs.StoreUnavailable("db: find user", err)
	}
	user.Normalize()
	return user, nil
}

// Create stores u with a fresh id. A taken email is a Conflict.
func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	now := s.now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = NormalizeEmail(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Normalize()

	if _, err := s.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.Conflict("User already exists")
		}
		return errs.StoreUnavailable("db: insert user", err)
	}
	return nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (models.User, error) {
	return s.findOne(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (s *UserStore) ByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// UpsertGoogle finds the user by Google id or email, links the Google id and
// records the login. Unknown profiles become new users. The email is only
// matched when Google verified it.
func (s *UserStore) UpsertGoogle(ctx context.Context, p models.GoogleProfile) (models.User, error) {
	now := s.now().UTC()
	email := NormalizeEmail(p.Email)
	match := bson.A{bson.M{"googleId": p.ID}}
	if p.VerifiedEmail {
		match = append(match, bson.M{"email": email})
	}
	filter := bson.M{"$or": match}
	update := bson.M{
		"$set": bson.M{
			"googleId":  p.ID,
			"lastLogin": now,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"name":      p.Name,
			"email":     email,
			"avatar":    p.Picture,
			"favorites": bson.A{},
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var user models.User
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return user, errs.Conflict("User already exists")
		}
		return user, errs.StoreUnavailable("db: upsert google user", err)
	}
	user.Normalize()
	return user, nil
}

// ToggleFavorite adds recipeID to the user's favorites, or removes it when
// present, in one atomic update. The order of the remaining ids is kept.
func (s *UserStore) ToggleFavorite(ctx context.Context, userID, recipeID primitive.ObjectID) (models.User, error) {
	favorites := bson.M{"$ifNull": bson.A{"$favorites", bson.A{}}}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "favorites", Value: bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{recipeID, favorites}},
				bson.M{"$filter": bson.M{
					"input": favorites,
					"cond":  bson.M{"$ne": bson.A{"$$this", recipeID}},
				}},
				bson.M{"$concatArrays": bson.A{favorites, bson.A{recipeID}}},
			}}},
			{Key: "updatedAt", Value: s.now().UTC()},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return user, errs.NotFound("User not found")
	}
	if err != nil {
		return user, errs.StoreUnavailable("db: toggle favorite", err)
	}
	user.Normalize()
	return user, nil
}

// TouchLogin records a successful password login.
func (s *UserStore) TouchLogin(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLogin": s.now().UTC()}})
	if err != nil {
		return errs.StoreUnavailable("db: touch login", err)
	}
	return nil
}

// All returns every user, password hashes included. Only the migrate command uses it.
func (s *UserStore) All(ctx context.Context) ([]models.User, error) {
	cursor, err := s.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, errs.StoreUnavailable("db: find users", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, errs.StoreUnavailable("db: decode users", err)
	}
	return users, nil
}

// InsertMany stores users unordered. Users whose email already exists are
// skipped; inserted and skipped are returned.
func (s *UserStore) InsertMany(ctx context.Context, users []models.User) (inserted, skipped int, err error) {
	if len(users) == 0 {
		return 0, 0, nil
	}
	docs := make([]any, len(users))
	for i := range users {
		docs[i] = users[i]
	}
	_, err = s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return len(users), 0, nil
	}
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && bwe.WriteConcernError == nil {
		for _, we := range bwe.WriteErrors {
			if we.Code != duplicateKeyCode {
				return 0, 0, errs.StoreUnavailable(fmt.Sprintf("db: insert users: %s", we.Message), err)
			}
		}
		return len(users) - len(bwe.WriteErrors), len(bwe.WriteErrors), nil
	}
	return 0, 0, errs.StoreUnavailable("db: insert users", err)
}
