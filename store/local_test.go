package store

import (
	"context"
	"errors"
	"testing"
)

func TestLocalStorePutGet(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := s.EnsureContainer(ctx, "models"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Put(ctx, "models", "model_v1.json", []byte("payload")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := s.Get(ctx, "models", "model_v1.json")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected payload: %q", data)
	}
}

func TestLocalStorePutCreatesContainer(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// no EnsureContainer call; Put must create the directory
	if err := s.Put(context.Background(), "metrics", "metrics.json", []byte("{}")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLocalStoreOverwrites(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()

	if err := s.Put(ctx, "models", "m", []byte("v1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Put(ctx, "models", "m", []byte("v2")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := s.Get(ctx, "models", "m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "v2" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestLocalStoreMissingBlob(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.Get(context.Background(), "models", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalStoreEmptyRoot(t *testing.T) {
	if _, err := NewLocalStore(""); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
