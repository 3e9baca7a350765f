package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/BradenHooton/citywalk/internal/models"
	"github.com/BradenHooton/citywalk/internal/validation"
)

// MajorCheckpointOffset is added to the clock when a major checkpoint is
// recorded. Downstream clients rely on the shifted timestamps.
const MajorCheckpointOffset = time.Hour

// ScoreRepository records checkpoint completions against a user.
type ScoreRepository interface {
	RecordMajorCheckpoint(ctx context.Context, username string, at time.Time) (*models.User, error)
	RecordMinorCheckpoint(ctx context.Context, username string, at time.Time) (*models.User, error)
}

// CheckpointReader looks up a single checkpoint.
type CheckpointReader interface {
	GetByID(ctx context.Context, id string) (*models.Checkpoint, error)
}

// ScoringService updates user scores when checkpoints are completed.
type ScoringService struct {
	users       ScoreRepository
	checkpoints CheckpointReader
	logger      *slog.Logger
	now         func() time.Time
}

// NewScoringService creates a new ScoringService
func NewScoringService(users ScoreRepository, checkpoints CheckpointReader, logger *slog.Logger) *ScoringService {
	return &ScoringService{
		users:       users,
		checkpoints: checkpoints,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// RecordCheckpoint credits username with a checkpoint. Major checkpoints
// increment the score and stamp lastCheckpoint and lastHelp one hour ahead;
// minor ones only stamp lastMinorCheckpoint.
func (s *ScoringService) RecordCheckpoint(ctx context.Context, username string, isMajor bool) (*models.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, models.NewValidationError(validation.MsgUsernameRequired)
	}

	var (
		user *models.User
		err  error
	)
	if isMajor {
		user, err = s.users.RecordMajorCheckpoint(ctx, username, s.now().Add(MajorCheckpointOffset))
	} else {
		user, err = s.users.RecordMinorCheckpoint(ctx, username, s.now())
	}
	if err != nil {
		if isNotFound(err) {
			s.logger.Info("scoring skipped: user not found", slog.String("username", username))
		}
		return nil, storeError(ctx, s.logger, "failed to record checkpoint", err,
			slog.String("username", username), slog.Bool("major", isMajor))
	}

	s.logger.Info("checkpoint recorded",
		slog.String("user_id", user.ID.Hex()),
		slog.Bool("major", isMajor),
		slog.Int("checkpoints_completed", user.CheckpointsCompleted))
	return user, nil
}

// CompleteCheckpoint scores username using the checkpoint's own major flag.
func (s *ScoringService) CompleteCheckpoint(ctx context.Context, checkpointID, username string) (*models.User, error) {
	cp, err := s.checkpoints.GetByID(ctx, checkpointID)
	if err != nil {
		return nil, storeError(ctx, s.logger, "failed to get checkpoint", err, slog.String("checkpoint_id", checkpointID))
	}
	return s.RecordCheckpoint(ctx, username, cp.IsMajorCheckpoint)
}
