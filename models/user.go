package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID   `json:"_id" bson:"_id,omitempty"`
	Name      string               `json:"name" bson:"name"`
	Email     string               `json:"email" bson:"email"`
	Password  string               `json:"-" bson:"password,omitempty"`
	GoogleID  string               `json:"googleId,omitempty" bson:"googleId,omitempty"`
	Avatar    string               `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Favorites []primitive.ObjectID `json:"favorites" bson:"favorites"`
	CreatedAt time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" bson:"updatedAt"`
	LastLogin time.Time            `json:"lastLogin" bson:"lastLogin,omitempty"`
}

// Normalize replaces a nil favorites list with an empty one.
func (u *User) Normalize() {
	if u.Favorites == nil {
		u.Favorites = []primitive.ObjectID{}
	}
}

// HasFavorite reports whether id is among the user's favorites.
func (u *User) HasFavorite(id primitive.ObjectID) bool {
	for _, f := range u.Favorites {
		if f == id {
			return true
		}
	}
	return false
}

// GoogleProfile is the subset of the Google userinfo response used at login.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// AuthResponse is returned by signup, login and the OAuth callback.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// FavoritesResponse is returned by the favorite toggle.
type FavoritesResponse struct {
	Favorites  []primitive.ObjectID `json:"favorites"`
	IsFavorite bool                 `json:"isFavorite"`
}
