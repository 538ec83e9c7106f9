// Package util holds the small helpers shared by the storage backends.
package util

import (
	"errors"
	"strings"
)

var errBadFileName = errors.New("invalid file name")

// SanitizeFileName makes an uploaded export name safe to embed in a storage
// key: traversal patterns are rejected outright, path separators become
// underscores.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errBadFileName
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errBadFileName
	}
	return s, nil
}
