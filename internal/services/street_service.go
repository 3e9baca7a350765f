package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
)

const msgStreetTaken = "Street record with this provaId and location already exists"

// StreetRepository defines the interface for destination and verification data access
type StreetRepository interface {
	FindDestination(ctx context.Context, provaID, location string) (*models.StreetDestination, error)
	RecordVerification(ctx context.Context, provaID, location, username string, at time.Time) (*models.StreetVerification, error)
	CreateDestination(ctx context.Context, d *models.StreetDestination) (*models.StreetDestination, error)
	ListDestinations(ctx context.Context, page models.PageRequest, sort []models.SortField) ([]*models.StreetDestination, int64, error)
	GetDestination(ctx context.Context, id string) (*models.StreetDestination, error)
	ListVerifications(ctx context.Context, page models.PageRequest) ([]*models.StreetVerification, int64, error)
}

// StreetService handles street verification business logic
type StreetService struct {
	repo   StreetRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewStreetService creates a new StreetService
func NewStreetService(repo StreetRepository, logger *slog.Logger) *StreetService {
	return &StreetService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NormalizeLocation lowercases and trims a location for lookups.
func NormalizeLocation(location string) string {
	return strings.ToLower(strings.TrimSpace(location))
}

// Verify checks whether (provaID, location) is a known destination and logs
// the attempt under username either way.
func (s *StreetService) Verify(ctx context.Context, provaID, location, username string) (*models.VerifyResult, error) {
	provaID = strings.TrimSpace(provaID)
	location = NormalizeLocation(location)
	username = strings.TrimSpace(username)

	if provaID == "" || location == "" || username == "" {
		return nil, models.NewValidationError("provaId, location and username are required")
	}
	if !validLogKey(username) {
		return nil, models.NewValidationError("Username must not contain '.' or start with '$'")
	}

	result := &models.VerifyResult{
		ProvaID:  provaID,
		Location: location,
		Username: username,
	}

	dest, err := s.repo.FindDestination(ctx, provaID, location)
	switch {
	case err == nil:
		result.Verified = true
		result.Info = dest.Info
	case !isNotFound(err):
		return nil, storeError(ctx, s.logger, "failed to find destination", err,
			slog.String("prova_id", provaID), slog.String("location", location))
	}

	at := s.now()
	if _, err := s.repo.RecordVerification(ctx, provaID, location, username, at); err != nil {
		return nil, storeError(ctx, s.logger, "failed to record verification", err,
			slog.String("prova_id", provaID), slog.String("location", location))
	}
	result.Timestamp = at

	s.logger.Info("street verification",
		slog.String("prova_id", provaID),
		slog.String("location", location),
		slog.String("username", username),
		slog.Bool("verified", result.Verified))
	return result, nil
}

// CreateDestination stores a new (provaId, location) destination.
func (s *StreetService) CreateDestination(ctx context.Context, in models.StreetInput) (*models.StreetDestination, error) {
	provaID := strings.TrimSpace(in.ProvaID)
	location := NormalizeLocation(in.Location)
	if provaID == "" || location == "" {
		return nil, models.NewValidationError("provaId and location are required")
	}

	_, err := s.repo.FindDestination(ctx, provaID, location)
	switch {
	case err == nil:
		return nil, models.NewConflictError(msgStreetTaken)
	case !isNotFound(err):
		return nil, storeError(ctx, s.logger, "failed to find destination", err)
	}

	created, err := s.repo.CreateDestination(ctx, &models.StreetDestination{
		ProvaID:  provaID,
		Location: location,
		Info:     in.Info,
	})
	if err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError(msgStreetTaken)
		}
		return nil, storeError(ctx, s.logger, "failed to create destination", err)
	}

	s.logger.Info("destination created", slog.String("destination_id", created.ID.Hex()), slog.String("prova_id", provaID))
	return created, nil
}

// ListDestinations returns one page of destinations, newest first by default.
func (s *StreetService) ListDestinations(ctx context.Context, page models.PageRequest, sort []models.SortField) (*models.Page[*models.StreetDestination], error) {
	items, total, err := s.repo.ListDestinations(ctx, page, sort)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list destinations", err)
	}
	return &models.Page[*models.StreetDestination]{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

// GetDestination retrieves a destination by ID
func (s *StreetService) GetDestination(ctx context.Context, id string) (*models.StreetDestination, error) {
	dest, err := s.repo.GetDestination(ctx, id)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to get destination", err, slog.String("destination_id", id))
	}
	return dest, nil
}

// VerificationHistory returns one page of verification logs, most recently
// touched first.
func (s *StreetService) VerificationHistory(ctx context.Context, page models.PageRequest) (*models.Page[*models.StreetVerification], error) {
	items, total, err := s.repo.ListVerifications(ctx, page)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list verifications", err)
	}
	return &models.Page[*models.StreetVerification]{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

// validLogKey reports whether username can be used as a key in verifiedBy.
func validLogKey(username string) bool {
	return !strings.Contains(username, ".") && !strings.HasPrefix(username, "$")
}
