package ml

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
)

// ArtifactError reports a classifier artifact that could not be loaded.
type ArtifactError struct {
	Path string
	Op   string
	Err  error
}

func (e *ArtifactError) Error() string {
	if e.IsNotFound() {
		return fmt.Sprintf("Model file not found. Please ensure '%s' is in the correct directory.", filepath.Base(e.Path))
	}
	return fmt.Sprintf("%s model %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// IsNotFound reports whether the artifact file does not exist.
func (e *ArtifactError) IsNotFound() bool {
	return errors.Is(e.Err, fs.ErrNotExist)
}

// ShapeError is returned by Predict when a row has the wrong width.
type ShapeError struct {
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("expected %d features, got %d", e.Want, e.Got)
}
