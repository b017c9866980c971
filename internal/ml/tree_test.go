package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreePredictsConstantTarget(t *testing.T) {
	x := [][]float64{{1, 0}, {2, 1}, {3, 0}, {4, 1}}
	y := []float64{7, 7, 7, 7}

	tree := fitTree(x, y, treeOptions{maxDepth: 5, minLeaf: 1}, nil)
	for _, v := range x {
		assert.Equal(t, 7.0, tree.Predict(v))
	}
}

func TestTreeSplitsOnInformativeFeature(t *testing.T) {
	// Label depends only on the first feature crossing 5.
	x := [][]float64{{1, 9}, {2, 3}, {3, 7}, {8, 1}, {9, 8}, {10, 2}}
	y := []float64{10, 10, 10, 40, 40, 40}

	tree := fitTree(x, y, treeOptions{maxDepth: 5, minLeaf: 1}, nil)
	assert.Equal(t, 10.0, tree.Predict([]float64{2, 5}))
	assert.Equal(t, 40.0, tree.Predict([]float64{9, 5}))

	// All the impurity reduction sits on feature 0.
	assert.Greater(t, tree.Importance[0], 0.0)
	assert.Zero(t, tree.Importance[1])
}

func TestForestDeterministicForSeed(t *testing.T) {
	x, y := syntheticData(40)

	a := fitForest(x, y, 20, 42)
	b := fitForest(x, y, 20, 42)

	probe := []float64{15, 0.5, 3}
	assert.Equal(t, a.Predict(probe), b.Predict(probe))
}

func TestForestImportancesNormalized(t *testing.T) {
	x, y := syntheticData(50)
	forest := fitForest(x, y, 30, 42)

	imp := forest.FeatureImportances()
	require.Len(t, imp, 3)
	sum := 0.0
	for _, v := range imp {
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestBoosterInitIsMean(t *testing.T) {
	x := [][]float64{{1}, {2}, {3}, {4}}
	y := []float64{10, 20, 30, 40}

	booster := fitBooster(x, y, 5, 42)
	assert.InDelta(t, 25.0, booster.Init, 1e-9)
}

func TestBoosterImprovesOverMean(t *testing.T) {
	x, y := syntheticData(60)
	booster := fitBooster(x, y, 50, 42)

	meanOnly := 0.0
	for _, v := range y {
		meanOnly += v
	}
	meanOnly /= float64(len(y))

	var boostedErr, meanErr float64
	for i := range x {
		dB := y[i] - booster.Predict(x[i])
		dM := y[i] - meanOnly
		boostedErr += dB * dB
		meanErr += dM * dM
	}
	assert.Less(t, boostedErr, meanErr)
}
