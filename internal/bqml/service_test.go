package bqml

import (
	"context"
	"strings"
	"testing"

	"github.com/stratusops/stratus/internal/fault"
)

type fakeModelStore struct {
	models  map[string][]ModelInfo // dataset -> models; absent key means absent dataset
	jobs    map[string]*JobState
	queries []string // job ids passed to RunQuery
	runErr  error    // submission failure
	jobErr  string   // job-level failure detail; the job completes with this error
}

func newFakeModelStore() *fakeModelStore {
	return &fakeModelStore{models: map[string][]ModelInfo{}, jobs: map[string]*JobState{}}
}

func (f *fakeModelStore) ListModels(ctx context.Context, dataset string) ([]ModelInfo, error) {
	models, ok := f.models[dataset]
	if !ok {
		return nil, fault.NotFoundf("dataset absent")
	}
	return models, nil
}

func (f *fakeModelStore) DeleteModel(ctx context.Context, dataset, model string) error {
	for i, m := range f.models[dataset] {
		if m.ID == model {
			f.models[dataset] = append(f.models[dataset][:i], f.models[dataset][i+1:]...)
			return nil
		}
	}
	return fault.NotFoundf("model absent")
}

// RunQuery completes the job synchronously, like the production adapter.
func (f *fakeModelStore) RunQuery(ctx context.Context, jobID, sql string) error {
	if f.runErr != nil {
		return f.runErr
	}
	f.queries = append(f.queries, jobID)
	f.jobs[jobID] = &JobState{State: "DONE", ErrorDetail: f.jobErr}
	if f.jobErr != "" {
		return fault.Upstreamf("query job failed: %s", f.jobErr)
	}
	return nil
}

func (f *fakeModelStore) JobState(ctx context.Context, jobID string) (*JobState, error) {
	state, ok := f.jobs[jobID]
	if !ok {
		return nil, fault.NotFoundf("job absent")
	}
	return state, nil
}

func TestListModelsAbsentAndEmptyLookAlike(t *testing.T) {
	fs := newFakeModelStore()
	fs.models["empty"] = nil
	svc := New(fs)
	for _, dataset := range []string{"empty", "ghost"} {
		_, err := svc.ListModels(context.Background(), dataset)
		if !fault.IsNotFound(err) {
			t.Fatalf("dataset %s: expected NotFound, got %v", dataset, err)
		}
		if err.Error() != "Dataset does not contain any models." {
			t.Fatalf("dataset %s: unexpected message %q", dataset, err.Error())
		}
	}
}

func TestListModels(t *testing.T) {
	fs := newFakeModelStore()
	fs.models["ds"] = []ModelInfo{{ID: "churn", Description: "churn predictor", Type: "LOGISTIC_REGRESSION"}}
	svc := New(fs)
	models, err := svc.ListModels(context.Background(), "ds")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(models) != 1 || models[0].ID != "churn" {
		t.Fatalf("unexpected models %v", models)
	}
}

func TestCreateModelReturnsPollableJobID(t *testing.T) {
	fs := newFakeModelStore()
	svc := New(fs)
	msg, err := svc.CreateModel(context.Background(), "ds", "churn", "CREATE MODEL ...")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(msg, "Model created successfully: churn in dataset: ds") {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(fs.queries) != 1 {
		t.Fatalf("expected one query, got %d", len(fs.queries))
	}
	jobID := fs.queries[0]
	if !strings.Contains(msg, "JobID: "+jobID) {
		t.Fatalf("message %q does not carry job id %s", msg, jobID)
	}
	status, err := svc.CheckTraining(context.Background(), jobID)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status.Status != "DONE" {
		t.Fatalf("expected DONE, got %s", status.Status)
	}
}

func TestCreateModelFailedJobIsNotSuccess(t *testing.T) {
	fs := newFakeModelStore()
	fs.jobErr = "Query error: syntax error at [1:8]"
	svc := New(fs)
	msg, err := svc.CreateModel(context.Background(), "ds", "churn", "CREATE MODL churn")
	if err == nil {
		t.Fatalf("expected error, got success %q", msg)
	}
	if fault.KindOf(err) != fault.Upstream {
		t.Fatalf("expected Upstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "syntax error at [1:8]") {
		t.Fatalf("job error detail lost: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "Model creation failed for dataset: ds") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestEvaluateModelFailedJobIsNotSuccess(t *testing.T) {
	fs := newFakeModelStore()
	fs.jobErr = "Not found: Model ds.churn"
	svc := New(fs)
	msg, err := svc.EvaluateModel(context.Background(), "ds", "churn", "SELECT * FROM ML.EVALUATE(MODEL `ds.churn`)")
	if err == nil {
		t.Fatalf("expected error, got success %q", msg)
	}
	if !strings.Contains(err.Error(), "Not found: Model ds.churn") {
		t.Fatalf("job error detail lost: %q", err.Error())
	}
}

func TestCreateModelQueryFailure(t *testing.T) {
	fs := newFakeModelStore()
	fs.runErr = fault.Upstreamf("syntax error at [1:8]")
	svc := New(fs)
	_, err := svc.CreateModel(context.Background(), "ds", "churn", "CREATE MODL")
	if fault.KindOf(err) != fault.Upstream {
		t.Fatalf("expected Upstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "Model creation failed for dataset: ds") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestDeleteModel(t *testing.T) {
	fs := newFakeModelStore()
	fs.models["ds"] = []ModelInfo{{ID: "churn"}}
	svc := New(fs)
	msg, err := svc.DeleteModel(context.Background(), "ds", "churn")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if msg != "Model deleted successfully: churn in dataset: ds" {
		t.Fatalf("unexpected message %q", msg)
	}
	if _, err := svc.DeleteModel(context.Background(), "ds", "churn"); !fault.IsNotFound(err) {
		t.Fatalf("second delete should be NotFound, got %v", err)
	}
}

func TestCheckTrainingUnknownJob(t *testing.T) {
	svc := New(newFakeModelStore())
	_, err := svc.CheckTraining(context.Background(), "jobId_nope")
	if !fault.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "Job not found: jobId_nope") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestCheckTrainingCarriesJobError(t *testing.T) {
	fs := newFakeModelStore()
	fs.jobs["jobId_x"] = &JobState{State: "DONE", ErrorDetail: "out of memory"}
	svc := New(fs)
	status, err := svc.CheckTraining(context.Background(), "jobId_x")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if status.Status != "DONE" || status.Error != "out of memory" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestEvaluateModel(t *testing.T) {
	fs := newFakeModelStore()
	svc := New(fs)
	msg, err := svc.EvaluateModel(context.Background(), "ds", "churn", "SELECT * FROM ML.EVALUATE(MODEL `ds.churn`)")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !strings.Contains(msg, "Model evaluated successfully: churn in dataset: ds") {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(fs.queries) != 1 {
		t.Fatalf("expected one query run")
	}
}
