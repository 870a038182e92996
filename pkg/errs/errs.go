// Package errs defines the error kinds surfaced by the churn pipeline.
//
// Every error returned across a package boundary wraps exactly one of the
// sentinels below, so callers can branch with errors.Is and the HTTP layer
// can report a stable kind name.
package errs

import (
	"github.com/pkg/errors"
)

var (
	// ErrDataUnavailable: reference or training data missing, empty or malformed.
	ErrDataUnavailable = errors.New("data unavailable")
	// ErrSchemaMismatch: row missing a required field after merge, wrong value kind, or unknown column layout.
	ErrSchemaMismatch = errors.New("schema mismatch")
	// ErrShapeMismatch: preprocessor given the wrong column count.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrModelUnavailable: artifacts failed to load or were never loaded.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrTrainingDataInvalid: degenerate training set.
	ErrTrainingDataInvalid = errors.New("training data invalid")
	// ErrArtifactVersionMismatch: model and preprocessor were not produced together for this schema.
	ErrArtifactVersionMismatch = errors.New("artifact version mismatch")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrDataUnavailable, "DataUnavailable"},
	{ErrSchemaMismatch, "SchemaMismatch"},
	{ErrShapeMismatch, "ShapeMismatch"},
	{ErrModelUnavailable, "ModelUnavailable"},
	{ErrTrainingDataInvalid, "TrainingDataInvalid"},
	{ErrArtifactVersionMismatch, "ArtifactVersionMismatch"},
}

// Kind returns the name of the error kind wrapped by err, or "Internal".
func Kind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the server's state.
func IsClientError(err error) bool {
	return errors.Is(err, ErrSchemaMismatch) || errors.Is(err, ErrShapeMismatch)
}
