package pgstore

import "errors"

var (
	// ErrDBNil is returned when constructing a store without a database
	// handle.
	ErrDBNil = errors.New("database handle is nil")

	// ErrNoJobs is returned by NextJob when the queue is empty.
	ErrNoJobs = errors.New("no queued jobs")
)
