package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/BradenHooton/citywalk/internal/database"
	"github.com/BradenHooton/citywalk/internal/models"
)

// PatternRepository reads the externally managed patterns collection.
type PatternRepository struct {
	patterns *database.Collection[models.Pattern]
}

func NewPatternRepository(db *database.DB) *PatternRepository {
	return &PatternRepository{patterns: database.NewCollection[models.Pattern](db.Database, database.CollectionPatterns)}
}

func (r *PatternRepository) GetBySequence(ctx context.Context, sequence string) (*models.Pattern, error) {
	return r.patterns.FindOne(ctx, bson.M{"sequence": sequence})
}
