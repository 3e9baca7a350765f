package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginResult is returned after a successful login. User never carries the
// password digest in JSON.
type LoginResult struct {
	User      *User     `json:"user"`
	LoginTime time.Time `json:"loginTime"`
}

// RegisterInput is the payload accepted on registration.
type RegisterInput struct {
	Name     string  `json:"name"`
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Password string  `json:"password"`
	Colour   string  `json:"colour"`
}

// LoginStats summarises password and login activity.
type LoginStats struct {
	TotalUsers        int64          `json:"totalUsers"`
	ActiveUsers       int64          `json:"activeUsers"`
	UsersWithPassword int64          `json:"usersWithPassword"`
	RecentLogins      []*RecentLogin `json:"recentLogins"`
}

// RecentLogin is the projection shown in login stats.
type RecentLogin struct {
	ID        primitive.ObjectID `json:"id"`
	Name      string             `json:"name"`
	Email     *string            `json:"email"`
	LastLogin *time.Time         `json:"lastLogin"`
}
