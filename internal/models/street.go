package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StreetDestination is a known (provaId, location) target.
type StreetDestination struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProvaID   string             `bson:"provaId" json:"provaId"`
	Location  string             `bson:"location" json:"location"`
	Info      interface{}        `bson:"info,omitempty" json:"info,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// StreetInput is the allow-listed payload for creating a destination.
type StreetInput struct {
	ProvaID  string      `json:"provaId"`
	Location string      `json:"location"`
	Info     interface{} `json:"info"`
}

// StreetVerification is the per-(provaId, location) log of who verified it.
type StreetVerification struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	ProvaID    string               `bson:"provaId" json:"provaId"`
	Location   string               `bson:"location" json:"location"`
	VerifiedBy map[string]time.Time `bson:"verifiedBy" json:"verifiedBy"`
	CreatedAt  time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// VerifyResult is returned from a verification attempt.
type VerifyResult struct {
	Verified  bool        `json:"verified"`
	ProvaID   string      `json:"provaId"`
	Location  string      `json:"location"`
	Username  string      `json:"username"`
	Timestamp time.Time   `json:"timestamp"`
	Info      interface{} `json:"info"`
}
