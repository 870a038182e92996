package artifact

import (
	"bytes"
	"encoding/gob"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/PanchangniDhangar/churn-prediction-system-hybrid-cloud/pkg/errs"
)

// FormatVersion is bumped whenever the encoded layout of a payload changes.
const FormatVersion = 1

// Envelope wraps a gob-encoded payload with the identity of the training run
// that produced it. Two artifacts are compatible only when both carry the
// same SchemaFingerprint and RunID.
type Envelope struct {
	Kind              Kind
	FormatVersion     int
	SchemaFingerprint string
	RunID             string
	CreatedAt         time.Time
	Payload           []byte
}

// NewRunID returns a fresh identifier for a training run.
func NewRunID() string { return uuid.NewString() }

// Seal gob-encodes v and wraps it in an envelope.
func Seal(kind Kind, fingerprint, runID string, v any) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(v); err != nil {
		return nil, errors.Wrapf(err, "encode %s", kind)
	}
	env := Envelope{
		Kind:              kind,
		FormatVersion:     FormatVersion,
		SchemaFingerprint: fingerprint,
		RunID:             runID,
		CreatedAt:         time.Now().UTC(),
		Payload:           payload.Bytes(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, errors.Wrapf(err, "encode %s envelope", kind)
	}
	return buf.Bytes(), nil
}

// Unseal decodes blob, checks that it holds kind in the current format, and
// decodes the payload into v.
func Unseal(blob []byte, kind Kind, v any) (*Envelope, error) {
	var env Envelope
	if err := gob.NewDecoder(bytes.NewReader(blob)).Decode(&env); err != nil {
		return nil, errors.Wrapf(errs.ErrModelUnavailable, "decode %s envelope: %v", kind, err)
	}
	if env.Kind != kind {
		return nil, errors.Wrapf(errs.ErrArtifactVersionMismatch, "blob holds %q, want %q", env.Kind, kind)
	}
	if env.FormatVersion != FormatVersion {
		return nil, errors.Wrapf(errs.ErrArtifactVersionMismatch, "%s format version %d, want %d", kind, env.FormatVersion, FormatVersion)
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(v); err != nil {
		return nil, errors.Wrapf(errs.ErrModelUnavailable, "decode %s payload: %v", kind, err)
	}
	return &env, nil
}
