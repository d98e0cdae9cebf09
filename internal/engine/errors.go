package engine

import "errors"

var (
	// ErrModelNotConfigured is returned by Chat when no model has been
	// wired into the engine. This is a caller contract violation and is
	// never retried.
	ErrModelNotConfigured = errors.New("model not configured")

	// ErrRetriesExhausted is the fallback raised after the retry budget
	// runs out without a recorded cause.
	ErrRetriesExhausted = errors.New("no response from model after retries")

	// ErrTransitionLimit indicates the pipeline exceeded its transition
	// ceiling, which means the edge table is broken.
	ErrTransitionLimit = errors.New("graph transition limit exceeded")

	// ErrUnknownNode indicates an edge referenced a node that does not
	// exist in the fixed topology.
	ErrUnknownNode = errors.New("unknown graph node")
)
