// Package bqml manages warehouse ML models and their training jobs.
package bqml

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/stratusops/stratus/internal/fault"
)

// ModelInfo describes a single model inside a dataset.
type ModelInfo struct {
	ID          string `json:"modelId"`
	Description string `json:"modelDescription"`
	Type        string `json:"modelType"`
}

// JobState is the warehouse-side status of an async query job.
type JobState struct {
	State       string
	ErrorDetail string
}

// ModelStore is the slice of the warehouse the ML facade needs. RunQuery
// blocks until the job completes and returns job-level failures as errors.
type ModelStore interface {
	ListModels(ctx context.Context, dataset string) ([]ModelInfo, error)
	DeleteModel(ctx context.Context, dataset, model string) error
	RunQuery(ctx context.Context, jobID, sql string) error
	JobState(ctx context.Context, jobID string) (*JobState, error)
}

// TrainingStatus is returned to callers polling a training job.
type TrainingStatus struct {
	Status string `json:"Status"`
	Error  string `json:"Error,omitempty"`
}

type Service struct {
	store ModelStore
}

func New(store ModelStore) *Service { return &Service{store: store} }

// ListModels returns the models in a dataset. An absent dataset and a
// dataset with no models both report the same not-found condition.
func (s *Service) ListModels(ctx context.Context, dataset string) ([]ModelInfo, error) {
	models, err := s.store.ListModels(ctx, dataset)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFoundf("Dataset does not contain any models.")
		}
		return nil, fault.Wrapf(err, "Failed to list models in dataset")
	}
	if len(models) == 0 {
		return nil, fault.NotFoundf("Dataset does not contain any models.")
	}
	return models, nil
}

// CreateModel runs a CREATE MODEL query and waits for the job; the job id is
// returned so the caller can look the job up later.
func (s *Service) CreateModel(ctx context.Context, dataset, model, sql string) (string, error) {
	jobID := "jobId_" + uuid.NewString()
	if err := s.store.RunQuery(ctx, jobID, sql); err != nil {
		return "", fault.Wrapf(err, "Model creation failed for dataset: %s", dataset)
	}
	return fmt.Sprintf("Model created successfully: %s in dataset: %s\nJobID: %s", model, dataset, jobID), nil
}

func (s *Service) DeleteModel(ctx context.Context, dataset, model string) (string, error) {
	if err := s.store.DeleteModel(ctx, dataset, model); err != nil {
		if fault.IsNotFound(err) {
			return "", fault.NotFoundf("Model not found: %s in dataset: %s", model, dataset)
		}
		return "", fault.Wrapf(err, "Failed to delete model")
	}
	return fmt.Sprintf("Model deleted successfully: %s in dataset: %s", model, dataset), nil
}

// CheckTraining reports the current state of a training job.
func (s *Service) CheckTraining(ctx context.Context, jobID string) (*TrainingStatus, error) {
	state, err := s.store.JobState(ctx, jobID)
	if err != nil {
		if fault.IsNotFound(err) {
			return nil, fault.NotFoundf("Job not found: %s", jobID)
		}
		return nil, fault.Wrapf(err, "Failed to check training job")
	}
	return &TrainingStatus{Status: state.State, Error: state.ErrorDetail}, nil
}

// EvaluateModel runs an evaluation query against an existing model and waits
// for the job.
func (s *Service) EvaluateModel(ctx context.Context, dataset, model, sql string) (string, error) {
	jobID := "jobId_" + uuid.NewString()
	if err := s.store.RunQuery(ctx, jobID, sql); err != nil {
		return "", fault.Wrapf(err, "Model evaluation failed for model: %s in dataset: %s", model, dataset)
	}
	return fmt.Sprintf("Model evaluated successfully: %s in dataset: %s\nJobID: %s", model, dataset, jobID), nil
}
