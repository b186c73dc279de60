package ml

import (
	"math"
	"testing"
)

func TestStratifiedSplitPreservesProportions(t *testing.T) {
	ds, err := GenerateDataset(1000, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	train, test := StratifiedSplit(ds, 0.2, 42)

	if train.Len()+test.Len() != ds.Len() {
		t.Fatalf("split lost rows: %d + %d != %d", train.Len(), test.Len(), ds.Len())
	}

	total := countClasses(ds.Labels)
	trainCounts := countClasses(train.Labels)
	for class := 0; class < NumClasses; class++ {
		want := float64(total[class]) / float64(ds.Len())
		got := float64(trainCounts[class]) / float64(train.Len())
		if math.Abs(want-got) > 0.02 {
			t.Fatalf("class %d proportion %f, want about %f", class, got, want)
		}
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	ds, err := GenerateDataset(200, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	trainA, _ := StratifiedSplit(ds, 0.2, 9)
	trainB, _ := StratifiedSplit(ds, 0.2, 9)

	if trainA.Len() != trainB.Len() {
		t.Fatalf("train sizes differ: %d vs %d", trainA.Len(), trainB.Len())
	}
	for i := range trainA.Features {
		if trainA.Features[i][0] != trainB.Features[i][0] {
			t.Fatalf("splits diverge at row %d", i)
		}
	}
}

func TestStratifiedSplitDefaultsBadRatio(t *testing.T) {
	ds, err := GenerateDataset(100, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, test := StratifiedSplit(ds, 1.5, 42)
	// falls back to 0.2
	if test.Len() < 15 || test.Len() > 25 {
		t.Fatalf("unexpected test size %d", test.Len())
	}
}
