package predictor

import (
	"context"
	"math"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

// neutralProbability is returned whenever prediction cannot be computed:
// a missing or malformed model must never turn into a failed request.
const neutralProbability = 50.0

// Service owns the model lifecycle: UNTRAINED until the first Train or
// Load, TRAINED on disk, LOADED in the in-memory cache. Retraining swaps
// both the artifact and the cache. The storage handle and cache are
// injected state, not package globals.
type Service struct {
	path             string
	trainingDataPath string
	seed             int64
	samples          int
	logger           *logrus.Logger

	mu     sync.Mutex
	cached *Model
}

// NewService creates a predictor service from configuration.
func NewService(cfg domain.ModelConfig, logger *logrus.Logger) *Service {
	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}
	samples := cfg.SyntheticSamples
	if samples <= 0 {
		samples = 1000
	}
	return &Service{
		path:             cfg.Path,
		trainingDataPath: cfg.TrainingDataPath,
		seed:             seed,
		samples:          samples,
		logger:           logger,
	}
}

// Train fits a model on the supplied examples, or on seeded synthetic data
// when examples is nil, and persists the result. Training never returns an
// error: any failure falls back to the degenerate zero-weight model with
// accuracy 0, which predicts the neutral 50% everywhere.
func (s *Service) Train(ctx context.Context, examples []Example) (*Model, float64) {
	if examples == nil {
		examples = Synthesize(s.seed, s.samples)
	}

	trainSet, testSet := splitTrainTest(examples, s.seed, testFraction)

	model, err := fit(trainSet)
	if err != nil {
		s.logger.WithError(err).Error("Model training failed, falling back to degenerate model")
		model = degenerateModel()
	} else {
		model.Accuracy = accuracy(model, testSet)
	}

	if err := saveModel(s.path, model); err != nil {
		// The in-memory model still serves predictions; persistence is
		// retried on the next training run.
		s.logger.WithError(err).Warn("Failed to persist trained model")
	}

	s.mu.Lock()
	s.cached = model
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"accuracy": model.Accuracy,
		"samples":  len(examples),
		"path":     s.path,
	}).Info("Appeal predictor trained")

	return model, model.Accuracy
}

// TrainFromConfiguredData trains from the configured CSV when present,
// otherwise from synthetic data.
func (s *Service) TrainFromConfiguredData(ctx context.Context) (*Model, float64) {
	if s.trainingDataPath == "" {
		return s.Train(ctx, nil)
	}

	examples, err := LoadCSV(s.trainingDataPath)
	if err != nil {
		s.logger.WithError(err).WithField("path", s.trainingDataPath).
			Warn("Failed to load training data, using synthetic data")
		return s.Train(ctx, nil)
	}
	return s.Train(ctx, examples)
}

// Load returns the cached model, falling back to the persisted artifact and
// finally to a fresh training run. The cache is refreshed only by Train.
func (s *Service) Load(ctx context.Context) *Model {
	s.mu.Lock()
	if s.cached != nil {
		m := s.cached
		s.mu.Unlock()
		return m
	}
	s.mu.Unlock()

	model, err := loadModel(s.path)
	if err == nil {
		s.mu.Lock()
		s.cached = model
		s.mu.Unlock()
		return model
	}

	s.logger.WithError(err).Info("No usable persisted model, training a new one")
	model, _ = s.Train(ctx, nil)
	return model
}

// Predict maps the user data and claim signals onto the model's class-1
// probability as a percentage in [0, 100], rounded to two decimals. Any
// failure resolves to the neutral 50.0 rather than an error.
func (s *Service) Predict(model *Model, user UserData, signals ClaimSignals) float64 {
	if model == nil {
		s.logger.Warn("Predict called without a model, returning neutral probability")
		return neutralProbability
	}

	p, err := model.probability(featureRow(user, signals))
	if err != nil {
		s.logger.WithError(err).Warn("Prediction failed, returning neutral probability")
		return neutralProbability
	}

	return math.Round(p*100*100) / 100
}
