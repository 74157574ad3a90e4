package repository

import (
	"context"
	"errors"
	"time"

	"flock/internal/models"
)

// storeErr classifies a store-level failure. Timeouts and cancellations are
// transient; everything else is internal.
func storeErr(err error) *models.AppError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NewTransientError(err)
	}
	return models.NewInternalError(err)
}

// nowUTC returns the current time normalized to UTC. Timestamps are bound as
// query parameters rather than computed with database NOW() so queries behave
// identically across postgres and sqlite.
func nowUTC() time.Time {
	return time.Now().UTC()
}
