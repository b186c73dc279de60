package ml

import (
	"errors"
	"testing"
)

func TestModelRoundTrip(t *testing.T) {
	forest, ds := trainedForest(t, 200)

	payload, err := EncodeModel(forest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	decoded, err := DecodeModel(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 30; i++ {
		want, wantConf, err := forest.Predict(ds.Features[i])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, gotConf, err := decoded.Predict(ds.Features[i])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want != got || wantConf != gotConf {
			t.Fatalf("row %d: prediction changed after round trip", i)
		}
	}
}

func TestEncodeUntrainedModel(t *testing.T) {
	if _, err := EncodeModel(&Forest{}); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
	if _, err := EncodeModel(nil); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeModel([]byte("not json")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
	if _, err := DecodeModel([]byte(`{"trees":[]}`)); err == nil {
		t.Fatal("expected error for untrained payload")
	}
}
