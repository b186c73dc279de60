package ml

import (
	"fmt"
	"time"
)

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1-score"`
	Support   int     `json:"support"`
}

// Report captures one evaluation of a fitted model on held-out data. It is
// written once per training run and never mutated afterwards. Confusion matrix
// rows are true classes, columns predicted classes.
type Report struct {
	Accuracy             float64                     `json:"accuracy"`
	ClassificationReport map[string]ClassMetrics     `json:"classification_report"`
	ConfusionMatrix      [NumClasses][NumClasses]int `json:"confusion_matrix"`
	Timestamp            time.Time                   `json:"timestamp"`
}

// Evaluate runs the model over the dataset and computes accuracy, per-class
// precision/recall/F1/support and the confusion matrix. The model is not
// mutated.
func Evaluate(model Classifier, ds Dataset) (Report, error) {
	if ds.Len() == 0 {
		return Report{}, fmt.Errorf("evaluation dataset is empty")
	}
	if len(ds.Features) != len(ds.Labels) {
		return Report{}, fmt.Errorf("features and labels size mismatch")
	}

	var matrix [NumClasses][NumClasses]int
	correct := 0
	for i, features := range ds.Features {
		predicted, _, err := model.Predict(features)
		if err != nil {
			return Report{}, fmt.Errorf("predict row %d: %w", i, err)
		}
		actual := ds.Labels[i]
		if actual < 0 || actual >= NumClasses || predicted < 0 || predicted >= NumClasses {
			return Report{}, fmt.Errorf("label out of range at row %d", i)
		}
		matrix[actual][predicted]++
		if predicted == actual {
			correct++
		}
	}

	classes := make(map[string]ClassMetrics, NumClasses)
	for class := 0; class < NumClasses; class++ {
		truePositive := matrix[class][class]
		actualTotal := 0
		predictedTotal := 0
		for other := 0; other < NumClasses; other++ {
			actualTotal += matrix[class][other]
			predictedTotal += matrix[other][class]
		}

		var precision, recall, f1 float64
		if predictedTotal > 0 {
			precision = float64(truePositive) / float64(predictedTotal)
		}
		if actualTotal > 0 {
			recall = float64(truePositive) / float64(actualTotal)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		classes[fmt.Sprintf("%d", class)] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   actualTotal,
		}
	}

	return Report{
		Accuracy:             float64(correct) / float64(ds.Len()),
		ClassificationReport: classes,
		ConfusionMatrix:      matrix,
		Timestamp:            time.Now().UTC(),
	}, nil
}
