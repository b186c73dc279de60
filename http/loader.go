package http

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"fluxml/ml"
	"fluxml/store"
)

// ModelProvider is what the prediction handler needs from the model layer.
type ModelProvider interface {
	Get(ctx context.Context) (ml.Classifier, error)
	Invalidate()
}

// Loader fetches the serialized model from blob storage and keeps at most one
// deserialized copy in memory. Load failures are never cached; the next Get
// retries the full load. Concurrent cold loads may each fetch independently;
// the artifact is immutable, so whichever copy lands in the cache is valid.
type Loader struct {
	store     store.Store
	container string
	key       string
	cache     *lru.Cache[string, *ml.Forest]
}

func NewLoader(st store.Store, container, key string) (*Loader, error) {
	cache, err := lru.New[string, *ml.Forest](1)
	if err != nil {
		return nil, err
	}
	return &Loader{store: st, container: container, key: key, cache: cache}, nil
}

func (l *Loader) Get(ctx context.Context) (ml.Classifier, error) {
	if l.store == nil || l.container == "" || l.key == "" {
		return nil, fmt.Errorf("model location: %w", store.ErrConfig)
	}

	cacheKey := l.container + "/" + l.key
	if model, ok := l.cache.Get(cacheKey); ok {
		return model, nil
	}

	payload, err := l.store.Get(ctx, l.container, l.key)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	model, err := ml.DecodeModel(payload)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	l.cache.Add(cacheKey, model)
	zap.L().Info("model loaded",
		zap.String("location", cacheKey),
		zap.Time("trained_at", model.TrainedAt),
		zap.Int("trees", len(model.Trees)))
	return model, nil
}

// Invalidate clears the cached model unconditionally; the next Get reloads.
func (l *Loader) Invalidate() {
	l.cache.Purge()
	zap.L().Info("model cache invalidated")
}
