package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkpoint is an operator-defined point of interest in the hunt.
type Checkpoint struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	InternalID        string             `bson:"internalId" json:"internalId"`
	Location          string             `bson:"location" json:"location"`
	Description       *string            `bson:"description" json:"description"`
	IsMajorCheckpoint bool               `bson:"isMajorCheckpoint" json:"isMajorCheckpoint"`
	Result            *CheckpointResult  `bson:"result" json:"result"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CheckpointResult is the free-form payload attached to a checkpoint.
type CheckpointResult struct {
	Message string      `bson:"message" json:"message"`
	Data    interface{} `bson:"data" json:"data"`
}

// CheckpointResultInput keeps Data raw so that an absent field can be told
// apart from an explicit null.
type CheckpointResultInput struct {
	Message *string         `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// HasData reports whether the data key was present in the payload (null counts).
func (r *CheckpointResultInput) HasData() bool {
	return len(r.Data) > 0
}

// ToResult converts a validated input into the stored form.
func (r *CheckpointResultInput) ToResult() (*CheckpointResult, error) {
	if r == nil {
		return nil, nil
	}
	var data interface{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &data); err != nil {
			return nil, err
		}
	}
	msg := ""
	if r.Message != nil {
		msg = *r.Message
	}
	return &CheckpointResult{Message: msg, Data: data}, nil
}

// CheckpointInput is the payload accepted when creating a checkpoint.
type CheckpointInput struct {
	InternalID        string                 `json:"internalId"`
	Location          string                 `json:"location"`
	Description       *string                `json:"description"`
	IsMajorCheckpoint *bool                  `json:"isMajorCheckpoint"`
	Result            *CheckpointResultInput `json:"result"`
}

// CheckpointUpdate carries only the fields a caller explicitly supplied.
type CheckpointUpdate struct {
	InternalID        *string                `json:"internalId"`
	Location          *string                `json:"location"`
	Description       *string                `json:"description"`
	IsMajorCheckpoint *bool                  `json:"isMajorCheckpoint"`
	Result            *CheckpointResultInput `json:"result"`
}

// IsEmpty reports whether no field was supplied.
func (u CheckpointUpdate) IsEmpty() bool {
	return u.InternalID == nil && u.Location == nil && u.Description == nil &&
		u.IsMajorCheckpoint == nil && u.Result == nil
}

// CheckpointFilter narrows checkpoint listings.
type CheckpointFilter struct {
	IsMajorCheckpoint *bool
	Location          string
	InternalID        string
}

// CheckpointStats summarises the checkpoints collection.
type CheckpointStats struct {
	TotalCheckpoints       int64 `json:"totalCheckpoints"`
	MajorCheckpoints       int64 `json:"majorCheckpoints"`
	MinorCheckpoints       int64 `json:"minorCheckpoints"`
	CheckpointsWithResults int64 `json:"checkpointsWithResults"`
	RecentlyUpdated        int64 `json:"recentlyUpdated"`
}

// CheckpointDashboard bundles stats with the two dashboard feeds.
type CheckpointDashboard struct {
	Stats             *CheckpointStats `json:"stats"`
	MajorCheckpoints  []*Checkpoint    `json:"majorCheckpoints"`
	RecentCheckpoints []*Checkpoint    `json:"recentCheckpoints"`
}
