// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account. Email is the login identifier;
// username is the public handle. Both are unique. PasswordHash is a bcrypt
// hash and never leaves the model layer in a response.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Avatar       string    `json:"avatar"` // media path, empty if not set
	PasswordHash string    `json:"-"`
	IsStaff      bool      `json:"-"`
	IsSuperuser  bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// CanEdit reports whether the user may mutate a resource owned by authorID.
// Owners, staff and superusers pass.
func (u *User) CanEdit(authorID string) bool {
	return u.ID == authorID || u.IsStaff || u.IsSuperuser
}

// Profile is the read representation of a user, including the
// viewer-relative subscription flag.
type Profile struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Avatar       string `json:"avatar"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// ProfileOf builds the read shape for u as seen by a viewer with the given
// subscription state.
func ProfileOf(u *User, isSubscribed bool) Profile {
	return Profile{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Avatar:       u.Avatar,
		IsSubscribed: isSubscribed,
	}
}

// Subscription is a follower → followee edge. Self-edges are forbidden by a
// database check constraint; (follower, followee) is unique.
type Subscription struct {
	FollowerID string
	FolloweeID string
	CreatedAt  time.Time
}

// SubscriptionEntry is one row of the subscription list: the followee's
// profile annotated with their recipe count and an optional recipe preview.
type SubscriptionEntry struct {
	Profile
	RecipesCount int             `json:"recipes_count"`
	Recipes      []RecipeSummary `json:"recipes"`
}
