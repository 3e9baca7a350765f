package services

import (
	"context"
	"log/slog"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/internal/validation"
)

// PatternRepository defines the interface for pattern lookups
type PatternRepository interface {
	GetBySequence(ctx context.Context, sequence string) (*models.Pattern, error)
}

// PatternService resolves binary sequences to canned messages.
type PatternService struct {
	repo   PatternRepository
	logger *slog.Logger
}

// NewPatternService creates a new PatternService
func NewPatternService(repo PatternRepository, logger *slog.Logger) *PatternService {
	return &PatternService{repo: repo, logger: logger}
}

// ValidatePattern strips everything but '0' and '1' from sequence and looks
// the result up. A miss is not an error.
func (s *PatternService) ValidatePattern(ctx context.Context, sequence string) (*models.PatternMatch, error) {
	cleaned := validation.CleanSequence(sequence)
	match := &models.PatternMatch{Success: true, Cleaned: cleaned, Message: []string{}}
	if cleaned == "" {
		return match, nil
	}

	pattern, err := s.repo.GetBySequence(ctx, cleaned)
	if err != nil {
		if isNotFound(err) {
			s.logger.Debug("pattern not matched", slog.String("sequence", cleaned))
			return match, nil
		}
		return nil, storeError(ctx, s.logger, "failed to look up pattern", err, slog.String("sequence", cleaned))
	}

	id := pattern.ID
	match.Matched = true
	match.ID = &id
	match.Sequence = pattern.Sequence
	if pattern.Message != nil {
		match.Message = pattern.Message
	}
	return match, nil
}
