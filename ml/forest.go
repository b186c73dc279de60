package ml

import (
	"errors"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

type Config struct {
	Trees    int    `json:"trees"`
	MaxDepth int    `json:"max_depth"`
	Seed     uint64 `json:"seed"`
}

func DefaultConfig() Config {
	return Config{Trees: 100, MaxDepth: 10, Seed: 42}
}

// Forest is a bagged ensemble of decision trees. Each tree is grown on a
// bootstrap sample of the training data; prediction averages the per-leaf
// class distributions across trees and the hard label is the argmax of that
// average, so Predict always agrees with PredictProba.
type Forest struct {
	Trees      []Tree    `json:"trees"`
	FeatureDim int       `json:"feature_dim"`
	TrainedAt  time.Time `json:"trained_at"`
	Config     Config    `json:"config"`
}

// TrainForest fits the ensemble. Trees are grown concurrently; every tree
// derives its own seed from Config.Seed, so the result is deterministic
// regardless of goroutine scheduling.
func TrainForest(features [][]float64, labels []int, cfg Config) (*Forest, error) {
	if len(features) == 0 || len(labels) == 0 {
		return nil, errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 10
	}

	counts := countClasses(labels)
	distinct := 0
	for _, c := range counts {
		if c > 0 {
			distinct++
		}
	}
	if distinct < 2 {
		return nil, ErrDegenerateData
	}

	forest := &Forest{
		Trees:      make([]Tree, cfg.Trees),
		FeatureDim: len(features[0]),
		TrainedAt:  time.Now().UTC(),
		Config:     cfg,
	}

	var wg sync.WaitGroup
	for i := 0; i < cfg.Trees; i++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(cfg.Seed + uint64(treeIdx)))
			sampleX, sampleY := bootstrapSample(features, labels, rnd)
			forest.Trees[treeIdx] = growTree(sampleX, sampleY, cfg.MaxDepth)
		}(i)
	}
	wg.Wait()

	return forest, nil
}

func bootstrapSample(features [][]float64, labels []int, rnd *rand.Rand) ([][]float64, []int) {
	n := len(features)
	sampleX := make([][]float64, n)
	sampleY := make([]int, n)
	for i := 0; i < n; i++ {
		idx := rnd.Intn(n)
		sampleX[i] = features[idx]
		sampleY[i] = labels[idx]
	}
	return sampleX, sampleY
}

// PredictProba returns the averaged two-class distribution; the elements sum
// to 1 for any trained forest.
func (f *Forest) PredictProba(features []float64) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotTrained
	}
	if len(features) != f.FeatureDim {
		return nil, ErrDimension
	}

	probs := make([]float64, NumClasses)
	for i := range f.Trees {
		counts, err := f.Trees[i].ClassCounts(features)
		if err != nil {
			return nil, err
		}
		total := 0
		for _, c := range counts {
			total += c
		}
		if total == 0 {
			continue
		}
		for class, c := range counts {
			probs[class] += float64(c) / float64(total)
		}
	}

	sum := 0.0
	for _, p := range probs {
		sum += p
	}
	if sum == 0 {
		return nil, errors.New("no tree produced a vote")
	}
	for class := range probs {
		probs[class] /= sum
	}
	return probs, nil
}

// Predict returns the majority class and its probability as confidence.
func (f *Forest) Predict(features []float64) (int, float64, error) {
	probs, err := f.PredictProba(features)
	if err != nil {
		return 0, 0, err
	}
	best := 0
	for class, p := range probs {
		if p > probs[best] {
			best = class
		}
	}
	return best, probs[best], nil
}
