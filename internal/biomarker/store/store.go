// Package store persists biomarker records and caches per-patient record lists.
//
// Stores return sentinel errors (sentinel.ErrConflict, sentinel.ErrNotFound) or
// wrapped driver errors; the service translates them into domain errors.
package store

import "healthhub/pkg/platform/sentinel"

var (
	ErrNotFound = sentinel.ErrNotFound
	ErrConflict = sentinel.ErrConflict
)
