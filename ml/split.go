package ml

import (
	"sort"

	"golang.org/x/exp/rand"
)

// StratifiedSplit partitions the dataset into train and test sets, preserving
// the original class proportions in both. The split is deterministic for a
// fixed seed.
func StratifiedSplit(ds Dataset, testRatio float64, seed uint64) (train, test Dataset) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}

	byClass := make(map[int][]int)
	for i, label := range ds.Labels {
		byClass[label] = append(byClass[label], i)
	}

	rnd := rand.New(rand.NewSource(seed))
	classes := make([]int, 0, len(byClass))
	for label := range byClass {
		classes = append(classes, label)
	}
	// map iteration order is random; keep the permutation reproducible
	sort.Ints(classes)

	for _, label := range classes {
		indices := byClass[label]
		perm := rnd.Perm(len(indices))
		testCount := int(float64(len(indices)) * testRatio)
		for i, p := range perm {
			idx := indices[p]
			if i < testCount {
				test.Features = append(test.Features, ds.Features[idx])
				test.Labels = append(test.Labels, ds.Labels[idx])
			} else {
				train.Features = append(train.Features, ds.Features[idx])
				train.Labels = append(train.Labels, ds.Labels[idx])
			}
		}
	}
	return train, test
}
