package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/internal/validation"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	msgInternalIDTaken = "Checkpoint with this internalId already exists"

	recentlyUpdatedWindow = 24 * time.Hour
	dashboardMajorLimit   = 10
	dashboardRecentLimit  = 5
)

// CheckpointRepository defines the interface for checkpoint data access
type CheckpointRepository interface {
	List(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) ([]*models.Checkpoint, int64, error)
	GetByID(ctx context.Context, id string) (*models.Checkpoint, error)
	InternalIDTaken(ctx context.Context, internalID string, exclude primitive.ObjectID) (bool, error)
	Create(ctx context.Context, cp *models.Checkpoint) (*models.Checkpoint, error)
	Update(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error)
	SetResult(ctx context.Context, id string, result *models.CheckpointResult) (*models.Checkpoint, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, since time.Time) (*models.CheckpointStats, error)
}

// CheckpointService handles checkpoint business logic
type CheckpointService struct {
	repo   CheckpointRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewCheckpointService creates a new CheckpointService
func NewCheckpointService(repo CheckpointRepository, logger *slog.Logger) *CheckpointService {
	return &CheckpointService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateCheckpoint validates and stores a checkpoint with a unique internalId.
func (s *CheckpointService) CreateCheckpoint(ctx context.Context, in models.CheckpointInput) (*models.Checkpoint, error) {
	if err := validation.Checkpoint(in).Err(); err != nil {
		return nil, err
	}

	internalID := strings.TrimSpace(in.InternalID)
	if err := s.ensureInternalIDFree(ctx, internalID, primitive.NilObjectID); err != nil {
		return nil, err
	}

	result, err := in.Result.ToResult()
	if err != nil {
		return nil, models.NewValidationError("Result data is not valid JSON")
	}

	cp := &models.Checkpoint{
		InternalID:        internalID,
		Location:          strings.TrimSpace(in.Location),
		Description:       trimmedPtr(in.Description),
		IsMajorCheckpoint: *in.IsMajorCheckpoint,
		Result:            result,
	}

	created, err := s.repo.Create(ctx, cp)
	if err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError(msgInternalIDTaken)
		}
		return nil, storeError(ctx, s.logger, "failed to create checkpoint", err)
	}

	s.logger.Info("checkpoint created",
		slog.String("checkpoint_id", created.ID.Hex()),
		slog.String("internal_id", created.InternalID),
		slog.Bool("major", created.IsMajorCheckpoint))
	return created, nil
}

// GetCheckpoint retrieves a checkpoint by ID
func (s *CheckpointService) GetCheckpoint(ctx context.Context, id string) (*models.Checkpoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to get checkpoint", err, slog.String("checkpoint_id", id))
	}
	return cp, nil
}

// ListCheckpoints returns one page of checkpoints, major ones first by default.
func (s *CheckpointService) ListCheckpoints(ctx context.Context, filter models.CheckpointFilter, page models.PageRequest, sort []models.SortField) (*models.Page[*models.Checkpoint], error) {
	cps, total, err := s.repo.List(ctx, filter, page, sort)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to list checkpoints", err)
	}
	return &models.Page[*models.Checkpoint]{Items: cps, Pagination: models.NewPagination(page, total)}, nil
}

// ListMajor returns one page of major checkpoints.
func (s *CheckpointService) ListMajor(ctx context.Context, page models.PageRequest) (*models.Page[*models.Checkpoint], error) {
	major := true
	return s.ListCheckpoints(ctx, models.CheckpointFilter{IsMajorCheckpoint: &major}, page, nil)
}

// SearchCheckpoints matches internalId or location as case-insensitive
// literal substrings. At least one term is required.
func (s *CheckpointService) SearchCheckpoints(ctx context.Context, internalID, location string, page models.PageRequest) (*models.Page[*models.Checkpoint], error) {
	filter := models.CheckpointFilter{
		InternalID: strings.TrimSpace(internalID),
		Location:   strings.TrimSpace(location),
	}
	if filter.InternalID == "" && filter.Location == "" {
		return nil, models.NewValidationError("Search by internalId or location is required")
	}
	return s.ListCheckpoints(ctx, filter, page, nil)
}

// UpdateCheckpoint applies the supplied fields. A new internalId must not
// belong to another checkpoint.
func (s *CheckpointService) UpdateCheckpoint(ctx context.Context, id string, u models.CheckpointUpdate) (*models.Checkpoint, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, models.ErrInvalidID
	}
	if u.IsEmpty() {
		return nil, models.NewValidationError("No update data provided")
	}
	if err := validation.CheckpointUpdate(u).Err(); err != nil {
		return nil, err
	}

	u.InternalID = trimmedPtr(u.InternalID)
	u.Location = trimmedPtr(u.Location)
	u.Description = trimmedPtr(u.Description)

	if u.InternalID != nil {
		if err := s.ensureInternalIDFree(ctx, *u.InternalID, oid); err != nil {
			return nil, err
		}
	}

	cp, err := s.repo.Update(ctx, id, u)
	if err != nil {
		if isConflict(err) {
			return nil, models.NewConflictError(msgInternalIDTaken)
		}
		return nil, storeError(ctx, s.logger, "failed to update checkpoint", err, slog.String("checkpoint_id", id))
	}

	s.logger.Info("checkpoint updated", slog.String("checkpoint_id", id))
	return cp, nil
}

// UpdateResult replaces the checkpoint's result. A nil input clears it.
func (s *CheckpointService) UpdateResult(ctx context.Context, id string, in *models.CheckpointResultInput) (*models.Checkpoint, error) {
	if err := validation.CheckpointResult(in).Err(); err != nil {
		return nil, err
	}
	result, err := in.ToResult()
	if err != nil {
		return nil, models.NewValidationError("Result data is not valid JSON")
	}

	cp, err := s.repo.SetResult(ctx, id, result)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to update checkpoint result", err, slog.String("checkpoint_id", id))
	}

	s.logger.Info("checkpoint result updated", slog.String("checkpoint_id", id), slog.Bool("cleared", result == nil))
	return cp, nil
}

// DeleteCheckpoint removes a checkpoint.
func (s *CheckpointService) DeleteCheckpoint(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeError(ctx, s.logger, "failed to delete checkpoint", err, slog.String("checkpoint_id", id))
	}
	s.logger.Info("checkpoint deleted", slog.String("checkpoint_id", id))
	return nil
}

// GetStats counts checkpoints. recentlyUpdated covers the last 24 hours.
func (s *CheckpointService) GetStats(ctx context.Context) (*models.CheckpointStats, error) {
	stats, err := s.repo.Stats(ctx, s.now().Add(-recentlyUpdatedWindow))
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to compute checkpoint stats", err)
	}
	return stats, nil
}

// GetDashboard bundles stats, the top major checkpoints and the most
// recently updated ones.
func (s *CheckpointService) GetDashboard(ctx context.Context) (*models.CheckpointDashboard, error) {
	stats, err := s.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	major := true
	majors, _, err := s.repo.List(ctx, models.CheckpointFilter{IsMajorCheckpoint: &major},
		models.NewPageRequest(1, dashboardMajorLimit), nil)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to load major checkpoints", err)
	}

	recent, _, err := s.repo.List(ctx, models.CheckpointFilter{},
		models.NewPageRequest(1, dashboardRecentLimit),
		[]models.SortField{{Field: "updatedAt", Descending: true}})
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to load recent checkpoints", err)
	}

	return &models.CheckpointDashboard{
		Stats:             stats,
		MajorCheckpoints:  majors,
		RecentCheckpoints: recent,
	}, nil
}

func (s *CheckpointService) ensureInternalIDFree(ctx context.Context, internalID string, exclude primitive.ObjectID) error {
	taken, err := s.repo.InternalIDTaken(ctx, internalID, exclude)
	if err != nil {
		return storeError(ctx, s.logger, "failed to check internalId", err)
	}
	if taken {
		s.logger.Info("checkpoint internalId taken", slog.String("internal_id", internalID))
		return models.NewConflictError(msgInternalIDTaken)
	}
	return nil
}
