package model

import (
	"math/rand"

	"win-predictor/internal/features"
)

const (
	// DefaultTestFraction mirrors the classic 80/20 split.
	DefaultTestFraction = 0.2
	// DefaultSeed keeps repeat runs reproducible unless the caller opts out.
	DefaultSeed = 42

	// Post-split floor: every outcome class needs at least this many rows in
	// the training partition and one in the test partition, so at the
	// default fraction each class needs at least 3 matches overall.
	minTrainRowsPerClass = 2
	minTestRowsPerClass  = 1
)

// InsufficientDataError means the feature table cannot support fitting and
// evaluating a classifier. It is fatal to the training step; there is no
// fallback to a degenerate model.
type InsufficientDataError struct {
	Reason string
}

func (e *InsufficientDataError) Error() string {
	return "insufficient data: " + e.Reason + " (need more matches)"
}

// Metrics is the plain numeric evaluation bundle over the test partition.
// Wins are the positive class. Formatting belongs to the display layer.
type Metrics struct {
	TruePositives  int
	FalsePositives int
	TrueNegatives  int
	FalseNegatives int

	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64

	TrainRows int
	TestRows  int
}

// TrainedModel is a fitted classifier bound to the encoding schema of the
// table it was trained on. Applying it to a table with a different schema is
// a SchemaMismatchError.
type TrainedModel struct {
	Schema *features.Schema
	Seed   int64

	forest *forest
}

// TrainOptions control the split and the forest. Zero values select the
// documented defaults.
type TrainOptions struct {
	TestFraction float64
	Seed         int64
	NumTrees     int
	MaxDepth     int
}

// Train encodes the table, splits it deterministically at TestFraction,
// fits the forest on the training partition and evaluates on the test
// partition. Both outcome classes must be represented on both sides of the
// split, so single-class tables and tiny samples fail with
// InsufficientDataError instead of producing a model.
func Train(table *features.Table, opts TrainOptions) (*TrainedModel, *Metrics, error) {
	if opts.TestFraction <= 0 || opts.TestFraction >= 1 {
		opts.TestFraction = DefaultTestFraction
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}

	if table.Len() == 0 {
		return nil, nil, &InsufficientDataError{Reason: "feature table is empty"}
	}

	var wins, losses int
	for _, row := range table.Rows {
		if row.Win {
			wins++
		} else {
			losses++
		}
	}
	if wins == 0 || losses == 0 {
		return nil, nil, &InsufficientDataError{
			Reason: "all matches in the sample have the same outcome",
		}
	}

	enc, err := features.Encode(table)
	if err != nil {
		return nil, nil, err
	}

	trainIdx, testIdx, err := splitIndices(enc.Y, opts.TestFraction, opts.Seed)
	if err != nil {
		return nil, nil, err
	}

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]bool, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = enc.X[idx]
		trainY[i] = enc.Y[idx]
	}

	f := fitForest(trainX, trainY, opts.Seed, forestParams{
		numTrees: opts.NumTrees,
		maxDepth: opts.MaxDepth,
	})

	m := evaluate(f, enc, testIdx)
	m.TrainRows = len(trainIdx)
	m.TestRows = len(testIdx)

	model := &TrainedModel{
		Schema: enc.Schema,
		Seed:   opts.Seed,
		forest: f,
	}
	return model, m, nil
}

// splitIndices partitions row indices per class with a seeded shuffle, so a
// fixed seed always produces the same split and both labels land on both
// sides whenever the per-class floors hold.
func splitIndices(y []bool, testFraction float64, seed int64) (train, test []int, err error) {
	var winIdx, lossIdx []int
	for i, label := range y {
		if label {
			winIdx = append(winIdx, i)
		} else {
			lossIdx = append(lossIdx, i)
		}
	}

	rng := rand.New(rand.NewSource(seed))
	for _, class := range [][]int{winIdx, lossIdx} {
		class := class
		rng.Shuffle(len(class), func(i, j int) {
			class[i], class[j] = class[j], class[i]
		})

		testN := int(float64(len(class))*testFraction + 0.5)
		if testN < minTestRowsPerClass {
			testN = minTestRowsPerClass
		}
		if testN > len(class)-minTrainRowsPerClass {
			testN = len(class) - minTrainRowsPerClass
		}
		if testN < minTestRowsPerClass {
			return nil, nil, &InsufficientDataError{
				Reason: "too few matches per outcome to split for evaluation",
			}
		}

		test = append(test, class[:testN]...)
		train = append(train, class[testN:]...)
	}

	return train, test, nil
}

func evaluate(f *forest, enc *features.Encoded, testIdx []int) *Metrics {
	m := &Metrics{}
	for _, idx := range testIdx {
		predictedWin := f.predictProba(enc.X[idx]) >= 0.5
		switch {
		case predictedWin && enc.Y[idx]:
			m.TruePositives++
		case predictedWin && !enc.Y[idx]:
			m.FalsePositives++
		case !predictedWin && !enc.Y[idx]:
			m.TrueNegatives++
		default:
			m.FalseNegatives++
		}
	}

	total := m.TruePositives + m.FalsePositives + m.TrueNegatives + m.FalseNegatives
	if total > 0 {
		m.Accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(total)
	}
	if m.TruePositives+m.FalsePositives > 0 {
		m.Precision = float64(m.TruePositives) / float64(m.TruePositives+m.FalsePositives)
	}
	if m.TruePositives+m.FalseNegatives > 0 {
		m.Recall = float64(m.TruePositives) / float64(m.TruePositives+m.FalseNegatives)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	return m
}
