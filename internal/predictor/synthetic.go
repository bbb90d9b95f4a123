package predictor

import (
	"math/rand"
)

// Synthetic training data knobs. The labeling rule weights mirror observed
// appeal patterns: lower amounts, prior authorization, and older claimants
// appeal more successfully.
const (
	synthAmountCutoff   = 10000.0
	synthAmountWeight   = 0.3
	synthPriorWeight    = 0.4
	synthAgeCutoff      = 50.0
	synthAgeWeight      = 0.2
	synthNoiseWeight    = 0.1
	synthLabelThreshold = 0.5
)

// Synthesize generates n labeled examples from a seeded generator. Columns
// are drawn one at a time (all ages, then all location codes, and so on) so
// the draw sequence, and with it the dataset, is reproducible for a given
// seed.
func Synthesize(seed int64, n int) []Example {
	rng := rand.New(rand.NewSource(seed))

	ages := make([]float64, n)
	for i := range ages {
		ages[i] = float64(25 + rng.Intn(60)) // [25, 85)
	}
	locations := make([]float64, n)
	for i := range locations {
		locations[i] = float64(10000 + rng.Intn(89999)) // [10000, 99999)
	}
	amounts := make([]float64, n)
	for i := range amounts {
		amounts[i] = 500 + rng.Float64()*49500 // [500, 50000)
	}
	priorAuths := make([]float64, n)
	for i := range priorAuths {
		if rng.Float64() < 0.6 {
			priorAuths[i] = 1
		}
	}
	reasons := make([]float64, n)
	for i := range reasons {
		reasons[i] = float64(1 + rng.Intn(5)) // {1..5}
	}
	textLengths := make([]float64, n)
	for i := range textLengths {
		textLengths[i] = float64(500 + rng.Intn(4500)) // [500, 5000)
	}
	icdFlags := make([]float64, n)
	for i := range icdFlags {
		if rng.Float64() < 0.7 {
			icdFlags[i] = 1
		}
	}

	examples := make([]Example, n)
	for i := range examples {
		examples[i] = Example{
			Features: [NumFeatures]float64{
				ages[i], locations[i], amounts[i], priorAuths[i],
				reasons[i], textLengths[i], icdFlags[i],
			},
		}

		score := rng.Float64() * synthNoiseWeight
		if amounts[i] < synthAmountCutoff {
			score += synthAmountWeight
		}
		if priorAuths[i] == 1 {
			score += synthPriorWeight
		}
		if ages[i] > synthAgeCutoff {
			score += synthAgeWeight
		}
		if score > synthLabelThreshold {
			examples[i].Label = 1
		}
	}
	return examples
}

// splitTrainTest shuffles deterministically and carves off the last testFrac
// of examples as the held-out set.
func splitTrainTest(examples []Example, seed int64, testFrac float64) (train, test []Example) {
	shuffled := make([]Example, len(examples))
	copy(shuffled, examples)

	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	cut := len(shuffled) - int(float64(len(shuffled))*testFrac)
	return shuffled[:cut], shuffled[cut:]
}
