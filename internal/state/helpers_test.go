package state

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/normalize"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/Sidd1721986/Elite-App/internal/storage"
)

var errNetwork = errors.New("network down")

func job(id, description string) models.Job {
	return normalize.Job(map[string]any{
		"id":          id,
		"description": description,
		"createdAt":   "2026-01-01T00:00:00Z",
	})
}

type sessionFunc func() bool

func (f sessionFunc) IsAuthenticated(context.Context) bool { return f() }

// fakeJobAPI serves canned results; the hook funcs override individual calls.
type fakeJobAPI struct {
	mu       sync.Mutex
	jobs     []models.Job
	getErr   error
	gets     int
	bypassed []bool

	create     func(models.JobDraft) (models.Job, error)
	update     func(id string, updates map[string]any) (models.Job, error)
	transition func(op, id string) (models.Job, error)
	addNote    func(id, content string) (models.JobNote, error)
}

func (f *fakeJobAPI) GetJobs(_ context.Context, bypass bool) ([]models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	f.bypassed = append(f.bypassed, bypass)
	if f.getErr != nil {
		return nil, f.getErr
	}
	return models.CloneJobs(f.jobs), nil
}

func (f *fakeJobAPI) CreateJob(_ context.Context, d models.JobDraft) (models.Job, error) {
	if f.create == nil {
		return models.Job{}, errNetwork
	}
	return f.create(d)
}

func (f *fakeJobAPI) UpdateJob(_ context.Context, id string, updates map[string]any) (models.Job, error) {
	if f.update == nil {
		return models.Job{}, errNetwork
	}
	return f.update(id, updates)
}

func (f *fakeJobAPI) AssignVendor(_ context.Context, jobID, vendorID string) (models.Job, error) {
	return f.do("assign:"+vendorID, jobID)
}

func (f *fakeJobAPI) AcceptJob(_ context.Context, jobID string) (models.Job, error) {
	return f.do("accept", jobID)
}

func (f *fakeJobAPI) CompleteSale(_ context.Context, jobID string, _ models.SaleData) (models.Job, error) {
	return f.do("sale", jobID)
}

func (f *fakeJobAPI) do(op, id string) (models.Job, error) {
	if f.transition == nil {
		return models.Job{}, errNetwork
	}
	return f.transition(op, id)
}

func (f *fakeJobAPI) AddNote(_ context.Context, jobID, content string) (models.JobNote, error) {
	if f.addNote == nil {
		return models.JobNote{}, errNetwork
	}
	return f.addNote(jobID, content)
}

func (f *fakeJobAPI) GetNotes(_ context.Context, jobID string) ([]models.JobNote, error) {
	return []models.JobNote{{ID: "n1", JobID: jobID}}, nil
}

// manualScheduler hands scheduled tasks to the test.
type manualScheduler struct {
	tasks chan func()
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{tasks: make(chan func(), 4)}
}

func (m *manualScheduler) Schedule(task func()) { m.tasks <- task }

type storeFixture struct {
	store   *JobStore
	api     *fakeJobAPI
	storage storage.Store
}

func newStore(t *testing.T, api *fakeJobAPI, st storage.Store, sched Scheduler) *storeFixture {
	t.Helper()
	if st == nil {
		st = storage.NewMemoryStore()
	}
	s := NewJobStore(JobStoreOpts{
		API:       api,
		Storage:   st,
		Session:   sessionFunc(func() bool { return true }),
		Scheduler: sched,
		Logger:    shared.NewLogger(io.Discard),
	})
	t.Cleanup(func() { s.Close() })
	return &storeFixture{store: s, api: api, storage: st}
}

// loaded returns a store already showing jobs.
func loaded(t *testing.T, jobs ...models.Job) *storeFixture {
	t.Helper()
	f := newStore(t, &fakeJobAPI{jobs: jobs}, nil, nil)
	if err := f.store.LoadJobs(context.Background(), false); err != nil {
		t.Fatalf("LoadJobs failed: %v", err)
	}
	return f
}
