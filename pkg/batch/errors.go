package batch

import "errors"

var (
	// ErrAborted is returned when a run stops because of a per-file failure,
	// either by policy or because the operator declined to continue.
	ErrAborted = errors.New("batch: run aborted")

	// ErrRemoteFetch is returned when the remote schema cannot be fetched.
	ErrRemoteFetch = errors.New("batch: remote fetch failed")

	// ErrNoSource is returned when a request names neither a schema directory
	// nor a remote URL.
	ErrNoSource = errors.New("batch: schema directory or remote url is required")

	// ErrNoTarget is returned when a request has no output target.
	ErrNoTarget = errors.New("batch: at least one target is required")
)
