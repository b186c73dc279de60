package ml

import (
	"errors"
	"math"
	"sort"
)

type TreeNode struct {
	FeatureIdx  int             `json:"feature_idx"`
	Threshold   float64         `json:"threshold"`
	LeftChild   int             `json:"left_child"`
	RightChild  int             `json:"right_child"`
	ClassCounts [NumClasses]int `json:"class_counts"`
	IsLeaf      bool            `json:"is_leaf"`
}

// Tree is a single CART classifier stored as a flattened node slice. Child
// fields index into Nodes; leaves carry the class counts of the training rows
// that reached them, so a leaf yields a probability distribution rather than
// just a hard label.
type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

func growTree(features [][]float64, labels []int, maxDepth int) Tree {
	if maxDepth <= 0 {
		maxDepth = 3
	}
	return Tree{Nodes: buildNode(features, labels, 0, maxDepth)}
}

// ClassCounts walks the tree and returns the leaf class counts for the vector.
func (t *Tree) ClassCounts(features []float64) ([NumClasses]int, error) {
	if len(t.Nodes) == 0 {
		return [NumClasses]int{}, ErrNotTrained
	}
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.IsLeaf {
			return node.ClassCounts, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return [NumClasses]int{}, errors.New("feature index out of range")
		}
		next := node.RightChild
		if features[node.FeatureIdx] <= node.Threshold {
			next = node.LeftChild
		}
		// Children always sit after their parent in the flattened slice, so
		// a non-increasing index means a corrupt tree, not a longer walk.
		if next <= idx || next >= len(t.Nodes) {
			return [NumClasses]int{}, errors.New("invalid tree state")
		}
		idx = next
	}
}

func buildNode(features [][]float64, labels []int, depth, maxDepth int) []TreeNode {
	counts := countClasses(labels)
	leaf := TreeNode{
		FeatureIdx:  -1,
		LeftChild:   -1,
		RightChild:  -1,
		ClassCounts: counts,
		IsLeaf:      true,
	}

	if depth >= maxDepth || isPure(labels) {
		return []TreeNode{leaf}
	}

	bestFeature, threshold, ok := findBestSplit(features, labels)
	if !ok {
		return []TreeNode{leaf}
	}

	leftFeatures, leftLabels, rightFeatures, rightLabels := splitData(features, labels, bestFeature, threshold)
	if len(leftLabels) == 0 || len(rightLabels) == 0 {
		return []TreeNode{leaf}
	}

	leftNodes := buildNode(leftFeatures, leftLabels, depth+1, maxDepth)
	rightNodes := buildNode(rightFeatures, rightLabels, depth+1, maxDepth)

	// Subtree child indices are relative to each subtree's own slice; shift
	// them to their final positions before flattening under the root.
	shiftChildren(leftNodes, 1)
	shiftChildren(rightNodes, 1+len(leftNodes))

	root := TreeNode{
		FeatureIdx:  bestFeature,
		Threshold:   threshold,
		LeftChild:   1,
		RightChild:  1 + len(leftNodes),
		ClassCounts: counts,
	}

	nodes := make([]TreeNode, 0, 1+len(leftNodes)+len(rightNodes))
	nodes = append(nodes, root)
	nodes = append(nodes, leftNodes...)
	nodes = append(nodes, rightNodes...)
	return nodes
}

func shiftChildren(nodes []TreeNode, offset int) {
	for i := range nodes {
		if nodes[i].IsLeaf {
			continue
		}
		nodes[i].LeftChild += offset
		nodes[i].RightChild += offset
	}
}

func findBestSplit(features [][]float64, labels []int) (int, float64, bool) {
	featureCount := len(features[0])
	bestFeature := -1
	bestThreshold := 0.0
	bestImpurity := math.MaxFloat64

	values := make([]float64, len(features))
	for featureIdx := 0; featureIdx < featureCount; featureIdx++ {
		for i := range features {
			values[i] = features[i][featureIdx]
		}
		for _, threshold := range candidateThresholds(values) {
			leftLabels, rightLabels := splitLabels(features, labels, featureIdx, threshold)
			if len(leftLabels) == 0 || len(rightLabels) == 0 {
				continue
			}
			impurity := weightedGini(leftLabels, rightLabels)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = featureIdx
				bestThreshold = threshold
			}
		}
	}
	if bestFeature == -1 {
		return -1, 0, false
	}
	return bestFeature, bestThreshold, true
}

// candidateThresholds returns the deciles of the sorted values. Scanning every
// midpoint is wasteful at ensemble scale; deciles keep split quality close at a
// fraction of the cost.
func candidateThresholds(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	thresholds := make([]float64, 0, 9)
	for q := 1; q < 10; q++ {
		idx := q * len(sorted) / 10
		if idx >= len(sorted) {
			idx = len(sorted) - 1
		}
		t := sorted[idx]
		if len(thresholds) == 0 || thresholds[len(thresholds)-1] != t {
			thresholds = append(thresholds, t)
		}
	}
	return thresholds
}

func splitData(features [][]float64, labels []int, featureIdx int, threshold float64) ([][]float64, []int, [][]float64, []int) {
	leftFeatures := make([][]float64, 0)
	leftLabels := make([]int, 0)
	rightFeatures := make([][]float64, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftFeatures = append(leftFeatures, feature)
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightFeatures = append(rightFeatures, feature)
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftFeatures, leftLabels, rightFeatures, rightLabels
}

func splitLabels(features [][]float64, labels []int, featureIdx int, threshold float64) ([]int, []int) {
	leftLabels := make([]int, 0)
	rightLabels := make([]int, 0)
	for i, feature := range features {
		if feature[featureIdx] <= threshold {
			leftLabels = append(leftLabels, labels[i])
		} else {
			rightLabels = append(rightLabels, labels[i])
		}
	}
	return leftLabels, rightLabels
}

func weightedGini(leftLabels, rightLabels []int) float64 {
	leftWeight := float64(len(leftLabels))
	rightWeight := float64(len(rightLabels))
	total := leftWeight + rightWeight
	return (leftWeight/total)*gini(leftLabels) + (rightWeight/total)*gini(rightLabels)
}

func gini(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	counts := countClasses(labels)
	impurity := 1.0
	for _, count := range counts {
		prob := float64(count) / float64(len(labels))
		impurity -= prob * prob
	}
	return impurity
}

func countClasses(labels []int) [NumClasses]int {
	var counts [NumClasses]int
	for _, label := range labels {
		if label >= 0 && label < NumClasses {
			counts[label]++
		}
	}
	return counts
}

func isPure(labels []int) bool {
	if len(labels) == 0 {
		return true
	}
	first := labels[0]
	for _, label := range labels[1:] {
		if label != first {
			return false
		}
	}
	return true
}
