package validation

import (
	"strings"

	"github.com/BradenHooton/citywalk/internal/models"
)

const (
	msgInternalID = "InternalId is required and must be at least 2 characters long"
	msgLocation   = "Location is required and must be at least 2 characters long"
	msgIsMajor    = "IsMajorCheckpoint must be a boolean value"
	msgResult     = "Result must be an object with message (string) and data (any type or null)"
)

// Checkpoint validates a full checkpoint record.
func Checkpoint(in models.CheckpointInput) Result {
	var c collector
	c.check(minTrimmed(in.InternalID, 2), msgInternalID)
	c.check(minTrimmed(in.Location, 2), msgLocation)
	c.check(in.IsMajorCheckpoint != nil, msgIsMajor)
	if in.Result != nil {
		c.check(IsValidResult(in.Result), msgResult)
	}
	return c.result()
}

// CheckpointUpdate validates only the fields present in the update.
func CheckpointUpdate(u models.CheckpointUpdate) Result {
	var c collector
	if u.InternalID != nil {
		c.check(minTrimmed(*u.InternalID, 2), msgInternalID)
	}
	if u.Location != nil {
		c.check(minTrimmed(*u.Location, 2), msgLocation)
	}
	if u.Result != nil {
		c.check(IsValidResult(u.Result), msgResult)
	}
	return c.result()
}

// CheckpointResult validates a replacement result. A nil result clears it and is valid.
func CheckpointResult(r *models.CheckpointResultInput) Result {
	var c collector
	if r != nil {
		c.check(IsValidResult(r), msgResult)
	}
	return c.result()
}

// IsValidResult requires a non-blank message and a data key (null allowed).
func IsValidResult(r *models.CheckpointResultInput) bool {
	if r == nil || r.Message == nil {
		return false
	}
	return strings.TrimSpace(*r.Message) != "" && r.HasData()
}
