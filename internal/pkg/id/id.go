package id

import "github.com/google/uuid"

// New generates a random (version 4) UUID string used as a document id.
func New() string {
	return uuid.NewString()
}
