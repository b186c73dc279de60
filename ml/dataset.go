package ml

import (
	"errors"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Dataset is a demonstration dataset: rows of fixed-width numeric features,
// each paired with a binary label. It is generated on demand and never persisted.
type Dataset struct {
	Features [][]float64
	Labels   []int
}

func (d Dataset) Len() int { return len(d.Features) }

// GenerateDataset draws n feature vectors from a standard normal distribution
// and labels each row 1 when feature_0+feature_1 > 0, else 0. A fixed seed
// yields identical output across calls.
func GenerateDataset(n int, seed uint64) (Dataset, error) {
	if n < 1 {
		return Dataset{}, errors.New("sample count must be positive")
	}

	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: rand.NewSource(seed)}

	features := make([][]float64, n)
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		row := make([]float64, FeatureCount)
		for j := range row {
			row[j] = normal.Rand()
		}
		features[i] = row
		if row[0]+row[1] > 0 {
			labels[i] = 1
		}
	}

	return Dataset{Features: features, Labels: labels}, nil
}
