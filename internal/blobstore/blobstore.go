package blobstore

import (
	"errors"
	"path"
	"strings"
)

var errInvalidPath = errors.New("blobstore: path is required")

// cleanPath roots p at "/" and resolves dot segments so no blob can escape the store.
func cleanPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || strings.HasSuffix(p, "/") {
		return "", errInvalidPath
	}
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "", errInvalidPath
	}
	return cleaned, nil
}
