package services

import (
	"context"
	"errors"
	"time"

	"github.com/teampayal/cafe-pos/utils"
)

const (
	storeTimeout = 3 * time.Second
	storeRetries = 3
	retryBackoff = 100 * time.Millisecond
)

// withStoreRetry menjalankan operasi store dengan timeout terbatas dan
// retry ber-backoff untuk kegagalan transient. Error invariant
// (Conflict/InvalidState/NotFound) tidak pernah di-retry: itu state dunia
// nyata yang harus dibaca ulang oleh caller.
func withStoreRetry(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	backoff := retryBackoff

	for attempt := 0; attempt < storeRetries; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, storeTimeout)
		err := op(opCtx)
		cancel()

		if err == nil {
			return nil
		}
		if !isTransient(err) {
			return err
		}

		lastErr = err
		utils.ErrorLogger.Printf("store operation failed (attempt %d/%d): %v", attempt+1, storeRetries, err)

		select {
		case <-ctx.Done():
			return ErrStoreTimeout
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	utils.ErrorLogger.Printf("store retries exhausted: %v", lastErr)
	return ErrStoreTimeout
}

func isTransient(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}
