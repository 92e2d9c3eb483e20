package matching

import "errors"

// Resolution errors. Callers distinguish these with errors.Is; everything else
// coming out of the resolver is an infrastructure failure from the candidate
// source and is wrapped as-is.
var (
	// ErrMissingQuery is returned when the query is empty or whitespace-only.
	ErrMissingQuery = errors.New("missing query")

	// ErrUnknownCollection is returned when the requested collection does not
	// exist in the alias index.
	ErrUnknownCollection = errors.New("unknown collection")

	// ErrIndexUnavailable is returned when no snapshot has been loaded yet or
	// the loaded snapshot is malformed. The caller should trigger a snapshot
	// reload; the resolver never retries internally.
	ErrIndexUnavailable = errors.New("alias index unavailable")
)
