package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Pattern maps a binary sequence to canned response messages.
type Pattern struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Sequence string             `bson:"sequence" json:"sequence"`
	Message  []string           `bson:"message" json:"message"`
}

// PatternMatch is the outcome of a pattern lookup.
type PatternMatch struct {
	Success  bool                `json:"success"`
	Cleaned  string              `json:"cleaned"`
	Matched  bool                `json:"matched"`
	Message  []string            `json:"message"`
	ID       *primitive.ObjectID `json:"id,omitempty"`
	Sequence string              `json:"sequence,omitempty"`
}
