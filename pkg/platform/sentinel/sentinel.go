package sentinel

import "errors"

// Sentinel errors for storage facts. Document stores return these (optionally
// wrapped) and services translate them into domain errors:
//   - ErrNotFound: no document with that id, or the id belongs to another kind
//   - ErrConflict: unique email index already taken
//   - ErrUnavailable: backend unreachable
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
