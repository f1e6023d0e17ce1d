package database

import "errors"

// ErrStoreNotFound is returned by Open when CreateIfNotExists is false and
// the database file does not exist.
var ErrStoreNotFound = errors.New("database not found")
