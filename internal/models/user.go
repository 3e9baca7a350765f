package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User status values
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is a hunt participant or operator stored in the users collection.
type User struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	Email                *string            `bson:"email" json:"email"`
	Username             string             `bson:"username,omitempty" json:"username,omitempty"`
	Password             string             `bson:"password,omitempty" json:"-"` // SHA-256 hex digest, never serialised
	Status               string             `bson:"status" json:"status"`
	CheckpointsCompleted int                `bson:"checkpointsCompleted" json:"checkpointsCompleted"`
	LastCheckpoint       *time.Time         `bson:"lastCheckpoint,omitempty" json:"lastCheckpoint,omitempty"`
	LastMinorCheckpoint  *time.Time         `bson:"lastMinorCheckpoint,omitempty" json:"lastMinorCheckpoint,omitempty"`
	LastHelp             *time.Time         `bson:"lastHelp,omitempty" json:"lastHelp,omitempty"`
	LastLogin            *time.Time         `bson:"lastLogin" json:"lastLogin"`
	Colour               string             `bson:"colour,omitempty" json:"colour,omitempty"`
	IsAdminUseOnly       bool               `bson:"isAdminUseOnly,omitempty" json:"isAdminUseOnly,omitempty"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasPassword reports whether a password digest is stored for the user.
func (u *User) HasPassword() bool {
	return u.Password != ""
}

// UserInput is the allow-listed payload accepted when creating a user.
type UserInput struct {
	Name           string  `json:"name"`
	Email          *string `json:"email"`
	Username       string  `json:"username"`
	Status         string  `json:"status"`
	Colour         string  `json:"colour"`
	IsAdminUseOnly bool    `json:"isAdminUseOnly"`
}

// UserUpdate carries only the fields a caller explicitly supplied.
// A nil pointer means "leave untouched".
type UserUpdate struct {
	Name                *string    `json:"name"`
	Email               *string    `json:"email"` // empty string clears the stored email
	Status              *string    `json:"status"`
	Colour              *string    `json:"colour"`
	LastMajorCheckpoint *time.Time `json:"lastMajorCheckpoint"`
	LastMinorCheckpoint *time.Time `json:"lastMinorCheckpoint"`
	LastHelp            *time.Time `json:"lastHelp"`
}

// IsEmpty reports whether no field was supplied.
func (u UserUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Status == nil && u.Colour == nil &&
		u.LastMajorCheckpoint == nil && u.LastMinorCheckpoint == nil && u.LastHelp == nil
}

// UserFilter narrows user listings.
type UserFilter struct {
	Status string
}

// UserStats summarises the users collection.
type UserStats struct {
	TotalUsers    int64   `json:"totalUsers"`
	ActiveUsers   int64   `json:"activeUsers"`
	InactiveUsers int64   `json:"inactiveUsers"`
	RecentUsers   []*User `json:"recentUsers"`
}

// RankingEntry is the public projection of a user on the leaderboard.
type RankingEntry struct {
	ID                   primitive.ObjectID `bson:"_id" json:"id"`
	Name                 string             `bson:"name" json:"name"`
	CheckpointsCompleted int                `bson:"checkpointsCompleted" json:"checkpointsCompleted"`
	Colour               string             `bson:"colour,omitempty" json:"colour,omitempty"`
}

// Ranking is the leaderboard response.
type Ranking struct {
	Ranking    []*RankingEntry `json:"ranking"`
	TotalUsers int             `json:"totalUsers"`
}

// UserSummary is the denormalised user embedded in joined views.
type UserSummary struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Email *string            `bson:"email" json:"email"`
}
