// Package storage stores attachment objects.
package storage

import (
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// ErrInvalidName is returned for object names that escape the storage root.
var ErrInvalidName = errors.New("invalid object name")

// Object is an interface for objects that can be stored.
type Object interface {
	io.Seeker
	fs.File
	Name() string
}

// Storage is an interface for storing and retrieving objects.
type Storage interface {
	Open(name string) (Object, error)
	Stat(name string) (fs.FileInfo, error)
	Put(name string, r io.Reader) (int64, error)
	Delete(name string) error
	Exists(name string) (bool, error)
}

// CleanName validates an object name and returns it in canonical,
// slash-separated form.
func CleanName(name string) (string, error) {
	if name == "" || strings.Contains(name, `\`) || strings.HasPrefix(name, "/") {
		return "", ErrInvalidName
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidName
	}
	return clean, nil
}
