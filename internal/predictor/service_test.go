package predictor

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaganv007/claimequity-ai/internal/domain"
)

func createTestService(t *testing.T) *Service {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return NewService(domain.ModelConfig{
		Path:             filepath.Join(t.TempDir(), "appeal_model.json"),
		Seed:             42,
		SyntheticSamples: 1000,
	}, logger)
}

func TestService_Train_Synthetic(t *testing.T) {
	// Arrange
	svc := createTestService(t)

	// Act
	model, acc := svc.Train(context.Background(), nil)

	// Assert
	require.NotNil(t, model)
	assert.Equal(t, acc, model.Accuracy)
	assert.GreaterOrEqual(t, acc, 0.0)
	assert.LessOrEqual(t, acc, 1.0)
	assert.FileExists(t, svc.path)
}

func TestService_Train_DeterministicAccuracy(t *testing.T) {
	// Arrange
	first := createTestService(t)
	second := createTestService(t)

	// Act
	_, accFirst := first.Train(context.Background(), nil)
	_, accSecond := second.Train(context.Background(), nil)

	// Assert
	assert.Equal(t, accFirst, accSecond)
}

func TestService_Train_LearnsTheSignal(t *testing.T) {
	// Arrange
	svc := createTestService(t)

	// Act
	_, acc := svc.Train(context.Background(), nil)

	// Assert: the labeling rule is mostly deterministic in three features,
	// so a fitted classifier must beat coin-flipping by a wide margin.
	assert.Greater(t, acc, 0.7)
}

func TestService_Train_EmptyButNotNilExamples(t *testing.T) {
	// Arrange
	svc := createTestService(t)

	// Act: zero usable examples cannot be fitted, so training degrades to
	// the neutral model instead of failing.
	model, acc := svc.Train(context.Background(), []Example{})

	// Assert
	require.NotNil(t, model)
	assert.Equal(t, 0.0, acc)
	assert.Equal(t, neutralProbability, svc.Predict(model, UserData{}, ClaimSignals{}))
}

func TestService_Train_UnwritableModelPathStillServes(t *testing.T) {
	// Arrange: a regular file blocks the model directory, so MkdirAll and
	// with it persistence fail.
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	svc := NewService(domain.ModelConfig{
		Path:             filepath.Join(blocker, "appeal.json"),
		Seed:             42,
		SyntheticSamples: 500,
	}, logger)

	// Act
	model, acc := svc.Train(context.Background(), nil)

	// Assert: persistence failure is non-fatal and the in-memory model still
	// serves real predictions.
	require.NotNil(t, model)
	assert.Greater(t, acc, 0.0)
	assert.Same(t, model, svc.Load(context.Background()))
}

func TestService_Load_UsesCache(t *testing.T) {
	// Arrange
	svc := createTestService(t)
	trained, _ := svc.Train(context.Background(), nil)

	// Act
	loaded := svc.Load(context.Background())

	// Assert: the cache returns the identical value, not a disk copy.
	assert.Same(t, trained, loaded)
}

func TestService_Load_FromDisk(t *testing.T) {
	// Arrange
	first := createTestService(t)
	trained, _ := first.Train(context.Background(), nil)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	second := NewService(domain.ModelConfig{
		Path: first.path,
		Seed: 42,
	}, logger)

	// Act
	loaded := second.Load(context.Background())

	// Assert
	require.NotNil(t, loaded)
	assert.Equal(t, trained.Weights, loaded.Weights)
	assert.Equal(t, trained.Accuracy, loaded.Accuracy)
}

func TestService_Load_TrainsWhenNothingPersisted(t *testing.T) {
	// Arrange
	svc := createTestService(t)

	// Act
	model := svc.Load(context.Background())

	// Assert
	require.NotNil(t, model)
	assert.FileExists(t, svc.path)
}

func TestService_Predict_Range(t *testing.T) {
	// Arrange
	svc := createTestService(t)
	model, _ := svc.Train(context.Background(), nil)

	cases := []struct {
		user    UserData
		signals ClaimSignals
	}{
		{UserData{Age: 67, LocationCode: 94103, Amount: 3200}, ClaimSignals{HasPriorAuth: true, TextLength: 1800, HasDiagnosisCode: true}},
		{UserData{Age: 29, LocationCode: 10001, Amount: 48000}, ClaimSignals{}},
		{UserData{}, ClaimSignals{}}, // all defaults
	}

	// Act / Assert
	for _, tc := range cases {
		p := svc.Predict(model, tc.user, tc.signals)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestService_Predict_NilModel(t *testing.T) {
	// Arrange
	svc := createTestService(t)

	// Act
	p := svc.Predict(nil, UserData{Age: 40}, ClaimSignals{})

	// Assert
	assert.Equal(t, neutralProbability, p)
}

func TestService_Predict_DegenerateModelIsNeutral(t *testing.T) {
	// Arrange
	svc := createTestService(t)

	// Act
	p := svc.Predict(degenerateModel(), UserData{Age: 71, Amount: 900}, ClaimSignals{HasPriorAuth: true})

	// Assert
	assert.Equal(t, 50.0, p)
}

func TestService_Predict_FavorableBeatsUnfavorable(t *testing.T) {
	// Arrange: the synthetic labeling rule rewards low amounts, prior auth,
	// and age over 50, so a claim with all three must score higher.
	svc := createTestService(t)
	model, _ := svc.Train(context.Background(), nil)

	// Act
	favorable := svc.Predict(model,
		UserData{Age: 70, LocationCode: 94103, Amount: 1000},
		ClaimSignals{HasPriorAuth: true, TextLength: 2000, HasDiagnosisCode: true})
	unfavorable := svc.Predict(model,
		UserData{Age: 30, LocationCode: 94103, Amount: 45000},
		ClaimSignals{TextLength: 2000, HasDiagnosisCode: true})

	// Assert
	assert.Greater(t, favorable, unfavorable)
}
