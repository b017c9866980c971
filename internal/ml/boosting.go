package ml

import "math/rand"

// Booster is a gradient-boosted ensemble of shallow regression trees fit on
// successive residuals with a constant learning rate.
type Booster struct {
	Init        float64 // base prediction (mean of training labels)
	LearnRate   float64
	Trees       []*Tree
	NumFeatures int
}

func fitBooster(x [][]float64, y []float64, numTrees int, seed int64) *Booster {
	rng := rand.New(rand.NewSource(seed))
	n := len(y)

	init := 0.0
	for _, v := range y {
		init += v
	}
	init /= float64(n)

	b := &Booster{
		Init:        init,
		LearnRate:   0.1,
		Trees:       make([]*Tree, 0, numTrees),
		NumFeatures: len(x[0]),
	}

	residuals := make([]float64, n)
	current := make([]float64, n)
	for i := range current {
		current[i] = init
	}

	opts := treeOptions{maxDepth: 3, minLeaf: 1}
	for t := 0; t < numTrees; t++ {
		for i := 0; i < n; i++ {
			residuals[i] = y[i] - current[i]
		}
		tree := fitTree(x, residuals, opts, rng)
		b.Trees = append(b.Trees, tree)
		for i := 0; i < n; i++ {
			current[i] += b.LearnRate * tree.Predict(x[i])
		}
	}
	return b
}

func (b *Booster) Predict(v []float64) float64 {
	out := b.Init
	for _, t := range b.Trees {
		out += b.LearnRate * t.Predict(v)
	}
	return out
}

func (b *Booster) FeatureImportances() []float64 {
	return normalizedImportances(b.Trees, b.NumFeatures)
}
