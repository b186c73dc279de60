package ml

import (
	"encoding/json"
	"fmt"
)

// EncodeModel serializes a trained forest to its artifact form. The bytes are
// opaque to everything except DecodeModel; compatibility is only required
// between a training run and the deployment that serves its artifact.
func EncodeModel(f *Forest) ([]byte, error) {
	if f == nil || len(f.Trees) == 0 {
		return nil, ErrNotTrained
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode model: %w", err)
	}
	return payload, nil
}

// DecodeModel reverses EncodeModel. A payload that does not describe a trained
// forest is rejected.
func DecodeModel(payload []byte) (*Forest, error) {
	var forest Forest
	if err := json.Unmarshal(payload, &forest); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if len(forest.Trees) == 0 {
		return nil, fmt.Errorf("decode model: %w", ErrNotTrained)
	}
	if forest.FeatureDim <= 0 {
		return nil, fmt.Errorf("decode model: missing feature dimension")
	}
	return &forest, nil
}
