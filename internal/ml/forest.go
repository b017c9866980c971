package ml

import "math/rand"

// Forest is an ensemble of regression trees fit on bootstrap resamples of the
// training data. Prediction averages the trees.
type Forest struct {
	Trees       []*Tree
	NumFeatures int
}

func fitForest(x [][]float64, y []float64, numTrees int, seed int64) *Forest {
	rng := rand.New(rand.NewSource(seed))
	f := &Forest{
		Trees:       make([]*Tree, numTrees),
		NumFeatures: len(x[0]),
	}

	n := len(y)
	opts := treeOptions{minLeaf: 1}
	bx := make([][]float64, n)
	by := make([]float64, n)
	for t := 0; t < numTrees; t++ {
		for i := 0; i < n; i++ {
			j := rng.Intn(n)
			bx[i] = x[j]
			by[i] = y[j]
		}
		f.Trees[t] = fitTree(bx, by, opts, rng)
	}
	return f
}

func (f *Forest) Predict(v []float64) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.Predict(v)
	}
	return sum / float64(len(f.Trees))
}

// FeatureImportances averages each tree's accumulated impurity decrease and
// normalizes the result to sum to 1 (all zeros when no split ever helped).
func (f *Forest) FeatureImportances() []float64 {
	return normalizedImportances(f.Trees, f.NumFeatures)
}

func normalizedImportances(trees []*Tree, numFeatures int) []float64 {
	total := make([]float64, numFeatures)
	for _, t := range trees {
		for i, imp := range t.Importance {
			total[i] += imp
		}
	}
	sum := 0.0
	for _, v := range total {
		sum += v
	}
	if sum == 0 {
		return total
	}
	for i := range total {
		total[i] /= sum
	}
	return total
}
