package model

import (
	"math"
	"math/rand"
	"sort"
)

// Decision-forest classifier, written in-process because the analysis runs
// on tiny per-player samples (at most 100 matches). Bootstrap sampling plus
// per-node feature subsampling keeps the ensemble from memorizing the
// training partition. All randomness flows from one seeded source, so a
// fixed seed yields an identical forest.

const (
	defaultNumTrees = 100
	defaultMaxDepth = 8
	minSamplesSplit = 2
)

type forest struct {
	trees []*treeNode
}

type treeNode struct {
	leaf      bool
	winFrac   float64 // fraction of win labels at this leaf
	feature   int
	threshold float64 // feature <= threshold goes left
	left      *treeNode
	right     *treeNode
}

type forestParams struct {
	numTrees int
	maxDepth int
}

// fitForest trains the ensemble on encoded feature vectors.
func fitForest(x [][]float64, y []bool, seed int64, p forestParams) *forest {
	if p.numTrees <= 0 {
		p.numTrees = defaultNumTrees
	}
	if p.maxDepth <= 0 {
		p.maxDepth = defaultMaxDepth
	}

	rng := rand.New(rand.NewSource(seed))
	f := &forest{trees: make([]*treeNode, 0, p.numTrees)}

	n := len(x)
	for t := 0; t < p.numTrees; t++ {
		// Bootstrap sample: n draws with replacement.
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		f.trees = append(f.trees, buildTree(x, y, sample, 0, p.maxDepth, rng))
	}

	return f
}

// predictProba returns the win-class probability for one feature vector:
// the mean of per-tree leaf win fractions. No randomness is involved, so
// predictions are deterministic for a fitted forest.
func (f *forest) predictProba(vec []float64) float64 {
	var sum float64
	for _, tree := range f.trees {
		sum += tree.classify(vec)
	}
	return sum / float64(len(f.trees))
}

func (t *treeNode) classify(vec []float64) float64 {
	node := t
	for !node.leaf {
		if vec[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.winFrac
}

func buildTree(x [][]float64, y []bool, indices []int, depth, maxDepth int, rng *rand.Rand) *treeNode {
	wins := 0
	for _, i := range indices {
		if y[i] {
			wins++
		}
	}

	if depth >= maxDepth || len(indices) < minSamplesSplit || wins == 0 || wins == len(indices) {
		return leafNode(wins, len(indices))
	}

	feature, threshold, ok := bestSplit(x, y, indices, rng)
	if !ok {
		return leafNode(wins, len(indices))
	}

	var left, right []int
	for _, i := range indices {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      buildTree(x, y, left, depth+1, maxDepth, rng),
		right:     buildTree(x, y, right, depth+1, maxDepth, rng),
	}
}

func leafNode(wins, total int) *treeNode {
	frac := 0.0
	if total > 0 {
		frac = float64(wins) / float64(total)
	}
	return &treeNode{leaf: true, winFrac: frac}
}

// bestSplit searches a sqrt-sized random feature subset for the threshold
// with the largest Gini impurity reduction.
func bestSplit(x [][]float64, y []bool, indices []int, rng *rand.Rand) (int, float64, bool) {
	numFeatures := len(x[0])
	subset := int(math.Ceil(math.Sqrt(float64(numFeatures))))

	parent := giniOf(y, indices)

	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0

	for _, feature := range rng.Perm(numFeatures)[:subset] {
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			values = append(values, x[i][feature])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			var leftWins, leftTotal, rightWins, rightTotal int
			for _, i := range indices {
				if x[i][feature] <= threshold {
					leftTotal++
					if y[i] {
						leftWins++
					}
				} else {
					rightTotal++
					if y[i] {
						rightWins++
					}
				}
			}
			if leftTotal == 0 || rightTotal == 0 {
				continue
			}

			total := float64(leftTotal + rightTotal)
			weighted := float64(leftTotal)/total*gini(leftWins, leftTotal) +
				float64(rightTotal)/total*gini(rightWins, rightTotal)

			if gain := parent - weighted; gain > bestGain {
				bestGain = gain
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func giniOf(y []bool, indices []int) float64 {
	wins := 0
	for _, i := range indices {
		if y[i] {
			wins++
		}
	}
	return gini(wins, len(indices))
}

func gini(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	p := float64(wins) / float64(total)
	return 2 * p * (1 - p)
}
