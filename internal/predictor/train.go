package predictor

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Training hyperparameters. Gradient descent over standardized features
// converges quickly for this 7-column problem; no tuning beyond defaults.
const (
	learnRate    = 0.5
	epochs       = 400
	testFraction = 0.2
)

// fit trains a logistic classifier on standardized features and returns the
// fitted model (without accuracy, which the caller computes on held-out
// data).
func fit(train []Example) (*Model, error) {
	n := len(train)
	if n == 0 {
		return nil, fmt.Errorf("no training examples")
	}

	// Column standardization: the raw columns span wildly different
	// scales (zip codes vs boolean flags), which stalls gradient descent.
	means := make([]float64, NumFeatures)
	stds := make([]float64, NumFeatures)
	col := make([]float64, n)
	for j := 0; j < NumFeatures; j++ {
		for i, ex := range train {
			col[i] = ex.Features[j]
		}
		means[j] = stat.Mean(col, nil)
		stds[j] = stat.StdDev(col, nil)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}

	data := make([]float64, n*NumFeatures)
	labels := make([]float64, n)
	for i, ex := range train {
		for j, v := range ex.Features {
			data[i*NumFeatures+j] = (v - means[j]) / stds[j]
		}
		labels[i] = float64(ex.Label)
	}

	x := mat.NewDense(n, NumFeatures, data)
	y := mat.NewVecDense(n, labels)
	w := mat.NewVecDense(NumFeatures, nil)
	diff := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(NumFeatures, nil)
	bias := 0.0

	for epoch := 0; epoch < epochs; epoch++ {
		diff.MulVec(x, w)

		sumDiff := 0.0
		for i := 0; i < n; i++ {
			p := sigmoid(diff.AtVec(i) + bias)
			d := p - y.AtVec(i)
			diff.SetVec(i, d)
			sumDiff += d
		}

		grad.MulVec(x.T(), diff)
		w.AddScaledVec(w, -learnRate/float64(n), grad)
		bias -= learnRate * sumDiff / float64(n)
	}

	weights := make([]float64, NumFeatures)
	for j := 0; j < NumFeatures; j++ {
		weights[j] = w.AtVec(j)
	}

	return &Model{
		Version:   modelVersion,
		Columns:   featureColumns[:],
		Weights:   weights,
		Bias:      bias,
		Means:     means,
		Stds:      stds,
		TrainedAt: time.Now(),
	}, nil
}

// accuracy scores the model against held-out examples with a 0.5 decision
// threshold.
func accuracy(m *Model, test []Example) float64 {
	if len(test) == 0 {
		return 0
	}

	correct := 0
	for _, ex := range test {
		p, err := m.probability(ex.Features)
		if err != nil {
			continue
		}
		predicted := 0
		if p > 0.5 {
			predicted = 1
		}
		if predicted == ex.Label {
			correct++
		}
	}
	return float64(correct) / float64(len(test))
}
