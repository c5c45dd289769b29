package repository

import "errors"

// ErrLockNotObtained is returned by a RebuildLocker when the lock is held elsewhere
var ErrLockNotObtained = errors.New("rebuild lock not obtained")

// ErrUnsupportedPredicate is returned when a repository cannot translate a predicate
var ErrUnsupportedPredicate = errors.New("unsupported predicate")
