package graphmodel

import "errors"

// ErrSelfLoop is recorded as a Warning, never returned as a hard error from
// Build: a triplet whose subject and object share an identity key is
// discarded rather than rejecting the whole input.
var ErrSelfLoop = errors.New("graphmodel: self-loop triplet")
