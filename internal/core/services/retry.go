package services

import (
	"errors"

	"github.com/fintrack/fintrack_app/internal/apperrors"
)

// conflictRetryLimit bounds re-reads when a guarded write loses a race.
const conflictRetryLimit = 3

// retryOnConflict runs fn until it returns anything other than
// apperrors.ErrConflict, up to attempts calls. fn re-reads its inputs on
// every call, so each retry works from fresh state. The last conflict error
// is returned when the limit is exhausted.
func retryOnConflict(attempts int, fn func() error) error {
	var err error
	for i := 0; i < attempts; i++ {
		err = fn()
		if !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
	}
	return err
}
