package ml

import (
	"testing"
	"time"
)

// ruleModel predicts straight from the labeling rule.
type ruleModel struct{}

func (ruleModel) Predict(features []float64) (int, float64, error) {
	if features[0]+features[1] > 0 {
		return 1, 1, nil
	}
	return 0, 1, nil
}

func (m ruleModel) PredictProba(features []float64) ([]float64, error) {
	label, _, _ := m.Predict(features)
	probs := make([]float64, NumClasses)
	probs[label] = 1
	return probs, nil
}

func TestEvaluatePerfectModel(t *testing.T) {
	ds, err := GenerateDataset(200, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := Evaluate(ruleModel{}, ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Accuracy != 1 {
		t.Fatalf("expected accuracy 1, got %f", report.Accuracy)
	}
	for class, metrics := range report.ClassificationReport {
		if metrics.Precision != 1 || metrics.Recall != 1 || metrics.F1 != 1 {
			t.Fatalf("class %s metrics not perfect: %+v", class, metrics)
		}
	}
}

func TestEvaluateConfusionMatrixRowSums(t *testing.T) {
	ds, err := GenerateDataset(300, 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	forest, err := TrainForest(ds.Features, ds.Labels, Config{Trees: 10, MaxDepth: 6, Seed: 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report, err := Evaluate(forest, ds)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Accuracy < 0 || report.Accuracy > 1 {
		t.Fatalf("accuracy out of range: %f", report.Accuracy)
	}

	classCounts := countClasses(ds.Labels)
	for class := 0; class < NumClasses; class++ {
		rowSum := 0
		for col := 0; col < NumClasses; col++ {
			rowSum += report.ConfusionMatrix[class][col]
		}
		if rowSum != classCounts[class] {
			t.Fatalf("row %d sums to %d, want %d", class, rowSum, classCounts[class])
		}
	}

	if time.Since(report.Timestamp) > time.Minute {
		t.Fatalf("stale timestamp: %v", report.Timestamp)
	}
}

func TestEvaluateEmptyDataset(t *testing.T) {
	if _, err := Evaluate(ruleModel{}, Dataset{}); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}
