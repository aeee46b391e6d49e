// Package uuid wraps google/uuid for the identifiers used across the service.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7. UUIDv7 values embed a millisecond timestamp plus
// a monotonic counter, so IDs generated by one process sort by creation time.
// Transaction ordering ties are broken on this property.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to a random UUIDv4 if the entropy source fails
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and normalises a UUID string
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
