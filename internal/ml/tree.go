package ml

import (
	"math/rand"
	"sort"
)

// TreeNode is one node of a fitted regression tree. Fields are exported for
// gob persistence of trained models.
type TreeNode struct {
	Feature   int
	Threshold float64
	Left      *TreeNode
	Right     *TreeNode
	Value     float64
	Leaf      bool
}

// Tree is a CART-style regression tree fit by recursive variance-reduction
// splitting.
type Tree struct {
	Root       *TreeNode
	Importance []float64 // impurity decrease accumulated per feature
}

type treeOptions struct {
	maxDepth    int // 0 = unlimited
	minLeaf     int
	maxFeatures int // 0 = all features considered at every split
}

func fitTree(x [][]float64, y []float64, opts treeOptions, rng *rand.Rand) *Tree {
	t := &Tree{Importance: make([]float64, len(x[0]))}
	idx := make([]int, len(y))
	for i := range idx {
		idx[i] = i
	}
	t.Root = t.build(x, y, idx, 0, opts, rng)
	return t
}

func (t *Tree) build(x [][]float64, y []float64, idx []int, depth int, opts treeOptions, rng *rand.Rand) *TreeNode {
	if len(idx) <= opts.minLeaf || (opts.maxDepth > 0 && depth >= opts.maxDepth) || constant(y, idx) {
		return &TreeNode{Leaf: true, Value: meanAt(y, idx)}
	}

	feature, threshold, gain := bestSplit(x, y, idx, opts, rng)
	if gain <= 0 {
		return &TreeNode{Leaf: true, Value: meanAt(y, idx)}
	}

	t.Importance[feature] += gain

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &TreeNode{
		Feature:   feature,
		Threshold: threshold,
		Left:      t.build(x, y, left, depth+1, opts, rng),
		Right:     t.build(x, y, right, depth+1, opts, rng),
	}
}

// bestSplit scans candidate (feature, threshold) pairs and returns the one
// with the largest sum-of-squared-error reduction.
func bestSplit(x [][]float64, y []float64, idx []int, opts treeOptions, rng *rand.Rand) (int, float64, float64) {
	numFeatures := len(x[0])
	candidates := featureCandidates(numFeatures, opts.maxFeatures, rng)

	parentSSE := sseAt(y, idx)
	bestFeature, bestThreshold, bestGain := -1, 0.0, 0.0

	vals := make([]float64, 0, len(idx))
	for _, feature := range candidates {
		vals = vals[:0]
		for _, i := range idx {
			vals = append(vals, x[i][feature])
		}
		sort.Float64s(vals)

		for k := 0; k+1 < len(vals); k++ {
			if vals[k] == vals[k+1] {
				continue
			}
			threshold := (vals[k] + vals[k+1]) / 2

			// Split SSE for this threshold.
			var lSum, lSq, rSum, rSq float64
			var lN, rN int
			for _, i := range idx {
				v := y[i]
				if x[i][feature] <= threshold {
					lSum += v
					lSq += v * v
					lN++
				} else {
					rSum += v
					rSq += v * v
					rN++
				}
			}
			if lN == 0 || rN == 0 {
				continue
			}
			childSSE := (lSq - lSum*lSum/float64(lN)) + (rSq - rSum*rSum/float64(rN))
			gain := parentSSE - childSSE
			if gain > bestGain {
				bestFeature, bestThreshold, bestGain = feature, threshold, gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func featureCandidates(numFeatures, maxFeatures int, rng *rand.Rand) []int {
	all := make([]int, numFeatures)
	for i := range all {
		all[i] = i
	}
	if maxFeatures <= 0 || maxFeatures >= numFeatures {
		return all
	}
	rng.Shuffle(numFeatures, func(i, j int) { all[i], all[j] = all[j], all[i] })
	picked := all[:maxFeatures]
	sort.Ints(picked)
	return picked
}

// Predict walks the tree for a single feature vector.
func (t *Tree) Predict(v []float64) float64 {
	node := t.Root
	for !node.Leaf {
		if v[node.Feature] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node.Value
}

func meanAt(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += y[i]
	}
	return sum / float64(len(idx))
}

func sseAt(y []float64, idx []int) float64 {
	m := meanAt(y, idx)
	sse := 0.0
	for _, i := range idx {
		d := y[i] - m
		sse += d * d
	}
	return sse
}

func constant(y []float64, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
