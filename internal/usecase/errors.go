package usecase

import "errors"

// ErrRebuildInProgress is returned when another process holds the rebuild lock
var ErrRebuildInProgress = errors.New("a reconciliation rebuild is already in progress")
