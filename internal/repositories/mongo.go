package repositories

import (
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/BradenHooton/citywalk/internal/models"
)

// sortDoc converts requested sort fields, falling back to def when none were given.
func sortDoc(fields []models.SortField, def bson.D) bson.D {
	if len(fields) == 0 {
		return def
	}
	d := make(bson.D, 0, len(fields))
	for _, f := range fields {
		dir := 1
		if f.Descending {
			dir = -1
		}
		d = append(d, bson.E{Key: f.Field, Value: dir})
	}
	return d
}

// containsFold matches term literally anywhere in the field, ignoring case.
func containsFold(term string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
}

// nullable stores an empty string as null.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
