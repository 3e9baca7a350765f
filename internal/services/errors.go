package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/citywalk/internal/models"
)

// storeError passes known error kinds through and logs anything else
// before collapsing it to ErrInternalServer.
func storeError(ctx context.Context, logger *slog.Logger, msg string, err error, attrs ...slog.Attr) error {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return models.ErrNotFound
	case errors.Is(err, models.ErrInvalidID):
		return models.ErrInvalidID
	case errors.Is(err, models.ErrBadRequest), errors.Is(err, models.ErrConflict):
		return err
	}

	attrs = append(attrs, slog.Any("error", err))
	logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return models.ErrInternalServer
}

// isNotFound reports a miss, letting other errors fall through to storeError.
func isNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

func isConflict(err error) bool {
	return errors.Is(err, models.ErrConflict)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
