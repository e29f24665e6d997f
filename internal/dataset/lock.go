package dataset

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock is an exclusive advisory lock on a dataset, held for a whole batch run.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock file next to the dataset (<path>.lock).
// It does not wait: a dataset already locked by another run returns ErrDatasetBusy.
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path + ".lock")
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetBusy, fl.Path())
	}
	return &Lock{fl: fl}, nil
}

// Release unlocks the dataset. The lock file itself stays on disk.
func (l *Lock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
