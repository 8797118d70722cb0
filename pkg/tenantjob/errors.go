package tenantjob

import "errors"

var (
	// ErrRepositoryNil is returned when constructing an enqueuer without
	// a repository.
	ErrRepositoryNil = errors.New("job repository is nil")

	// ErrPayloadNil is returned when enqueueing a nil payload.
	ErrPayloadNil = errors.New("job payload is nil")

	// ErrLoaderNil is returned when constructing a dispatcher without a
	// tenant loader.
	ErrLoaderNil = errors.New("tenant loader is nil")

	// ErrHandlerNil is returned when registering a nil handler.
	ErrHandlerNil = errors.New("job handler is nil")

	// ErrHandlerRegistered is returned when a job name is registered twice.
	ErrHandlerRegistered = errors.New("job handler already registered")

	// ErrHandlerNotFound is returned when no handler matches a job name.
	ErrHandlerNotFound = errors.New("no handler for job")
)
