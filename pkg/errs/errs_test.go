package errs

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), "Internal"},
		{"data", errors.Wrap(ErrDataUnavailable, "reference dataset"), "DataUnavailable"},
		{"schema", errors.Wrapf(ErrSchemaMismatch, "field %s", "mou_Mean"), "SchemaMismatch"},
		{"shape", errors.Wrap(errors.Wrap(ErrShapeMismatch, "inner"), "outer"), "ShapeMismatch"},
		{"model", ErrModelUnavailable, "ModelUnavailable"},
		{"training", errors.Wrap(ErrTrainingDataInvalid, "single class"), "TrainingDataInvalid"},
		{"version", errors.Wrap(ErrArtifactVersionMismatch, "run id"), "ArtifactVersionMismatch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.err))
		})
	}
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(errors.Wrap(ErrSchemaMismatch, "x")))
	assert.True(t, IsClientError(ErrShapeMismatch))
	assert.False(t, IsClientError(ErrModelUnavailable))
	assert.False(t, IsClientError(errors.New("other")))
}
