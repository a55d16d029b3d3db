// This file defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as handlers
// to distinguish between different failure scenarios without inspecting
// driver-specific errors.

package repository

import "errors"

// ErrConcertNotFound indicates that a concert was not located in the DB.
var ErrConcertNotFound = errors.New("concert not found")

// ErrAlreadyLabelled is returned when an emotion update targets a review
// whose label is already set.  Labels are write-once.
var ErrAlreadyLabelled = errors.New("review already labelled")
