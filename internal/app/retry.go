package app

import (
	"errors"

	"emoji-quiz-service/internal/domain"
)

// maxStoreAttempts bounds retries of transient store failures before they
// surface to the caller as a fetch failure.
const maxStoreAttempts = 10

// retryStore runs op, retrying only transient store errors up to the ceiling.
// Any other error (or success) returns immediately.
func retryStore(op func() error) error {
	var err error
	for attempt := 0; attempt < maxStoreAttempts; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, domain.ErrStore) {
			return err
		}
	}
	return err
}
