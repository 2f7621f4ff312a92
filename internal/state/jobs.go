package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/Sidd1721986/Elite-App/internal/normalize"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/Sidd1721986/Elite-App/internal/storage"
	"github.com/charmbracelet/log"
)

// JobAPI is the network side of the job store. [services.JobService] implements it.
type JobAPI interface {
	GetJobs(ctx context.Context, bypassCache bool) ([]models.Job, error)
	CreateJob(ctx context.Context, draft models.JobDraft) (models.Job, error)
	UpdateJob(ctx context.Context, id string, updates map[string]any) (models.Job, error)
	AssignVendor(ctx context.Context, jobID, vendorID string) (models.Job, error)
	AcceptJob(ctx context.Context, jobID string) (models.Job, error)
	CompleteSale(ctx context.Context, jobID string, sale models.SaleData) (models.Job, error)
	AddNote(ctx context.Context, jobID, content string) (models.JobNote, error)
	GetNotes(ctx context.Context, jobID string) ([]models.JobNote, error)
}

// Session reports whether someone is signed in.
type Session interface {
	IsAuthenticated(ctx context.Context) bool
}

// JobStoreOpts wires a [JobStore]. Scheduler defaults to [ImmediateScheduler].
type JobStoreOpts struct {
	API       JobAPI
	Storage   storage.Store
	Session   Session
	Scheduler Scheduler
	Logger    *log.Logger
}

// JobStore is the authoritative in-memory job collection. See the package documentation.
type JobStore struct {
	api     JobAPI
	storage storage.Store
	session Session
	sched   Scheduler
	logger  *log.Logger

	mu      sync.RWMutex
	jobs    []models.Job
	index   map[string]int
	edits   map[string]*jobEdits
	version uint64
	loading bool
	errMsg  string
	closed  bool

	subs listeners

	persistMu sync.Mutex
	persisted uint64
	pending   sync.WaitGroup
}

func NewJobStore(opts JobStoreOpts) *JobStore {
	s := &JobStore{
		api:     opts.API,
		storage: opts.Storage,
		session: opts.Session,
		sched:   opts.Scheduler,
		logger:  opts.Logger,
		jobs:    []models.Job{},
		index:   map[string]int{},
		edits:   map[string]*jobEdits{},
		loading: true,
	}
	if s.sched == nil {
		s.sched = ImmediateScheduler{}
	}
	if s.logger == nil {
		s.logger = shared.NewLogger(nil)
	}
	return s
}

// Jobs returns a copy of the collection in display order.
func (s *JobStore) Jobs() []models.Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.CloneJobs(s.jobs)
}

func (s *JobStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the last recorded failure message, or "" when the last operation succeeded.
func (s *JobStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// GetJobByID looks a job up through the id index.
func (s *JobStore) GetJobByID(id string) (models.Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return models.Job{}, false
	}
	return s.jobs[i].Clone(), true
}

// Subscribe registers fn to run after every state change and returns its unsubscribe func.
func (s *JobStore) Subscribe(fn func()) func() {
	return s.subs.add(fn)
}

// LoadJobs runs the load protocol and returns once the network phase has settled.
//
// Without a session nothing is loaded. Unless refresh is set the persisted
// snapshot is displayed first. The network phase then runs on the scheduler;
// on success it replaces the collection, on failure it keeps what is shown
// and records the error. A refresh also bypasses the HTTP response cache.
func (s *JobStore) LoadJobs(ctx context.Context, refresh bool) error {
	if err := s.alive(); err != nil {
		return err
	}

	if s.session != nil && !s.session.IsAuthenticated(ctx) {
		s.update(func() { s.loading = false })
		return nil
	}

	s.update(func() { s.loading = true })
	if !refresh {
		s.hydrate(ctx)
	}

	done := make(chan error, 1)
	s.sched.Schedule(func() { done <- s.fetch(ctx, refresh) })

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RefreshJobs reloads from the network, skipping the snapshot and the response cache.
func (s *JobStore) RefreshJobs(ctx context.Context) error {
	return s.LoadJobs(ctx, true)
}

func (s *JobStore) hydrate(ctx context.Context) {
	data, ok, err := s.storage.GetItem(ctx, storage.KeyJobsSnapshot)
	if err != nil {
		s.logger.Warn("failed to read jobs snapshot", "error", err)
		return
	}
	if !ok || data == "" {
		return
	}

	v, err := normalize.Decode([]byte(data))
	if err == nil {
		if _, isArray := v.([]any); !isArray {
			err = errors.New("not an array")
		}
	}
	if err != nil {
		s.logger.Warn("ignoring jobs snapshot", "error", fmt.Errorf("%w: %v", shared.ErrSnapshotCorrupt, err))
		return
	}

	jobs := normalize.Jobs(v)
	s.update(func() {
		s.replace(jobs)
		s.loading = false
	})
	s.logger.Debug("hydrated jobs from snapshot", "count", len(jobs))
}

func (s *JobStore) fetch(ctx context.Context, refresh bool) error {
	jobs, err := s.api.GetJobs(ctx, refresh)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrStoreClosed
	}
	s.loading = false
	if err != nil {
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.subs.notify()
		s.logger.Error("failed to load jobs", "error", err)
		return err
	}

	s.replace(jobs)
	s.errMsg = ""
	version, snapshot := s.version, models.CloneJobs(s.jobs)
	s.pending.Add(1)
	s.mu.Unlock()
	s.subs.notify()

	go func() {
		defer s.pending.Done()
		if err := s.persist(context.WithoutCancel(ctx), version, snapshot); err != nil {
			s.logger.Warn("failed to persist jobs snapshot", "error", err)
		}
	}()
	return nil
}

// AddJob creates a job on the server and prepends the confirmed result.
func (s *JobStore) AddJob(ctx context.Context, draft models.JobDraft) (models.Job, error) {
	if err := s.alive(); err != nil {
		return models.Job{}, err
	}

	job, err := s.api.CreateJob(ctx, draft)
	if err != nil {
		return models.Job{}, s.fail(err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return job, shared.ErrStoreClosed
	}
	jobs := make([]models.Job, 0, len(s.jobs)+1)
	jobs = append(jobs, job.Clone())
	jobs = append(jobs, s.jobs...)
	s.replace(jobs)
	s.errMsg = ""
	version, snapshot := s.version, models.CloneJobs(s.jobs)
	s.pending.Add(1)
	s.mu.Unlock()
	s.subs.notify()

	return job, s.persistWrite(ctx, version, snapshot)
}

// UpdateJob applies updates locally, then confirms them with the server.
//
// While updates to a job are in flight the job is shown as its last confirmed
// value with every pending update layered on top. A failed update is dropped
// from that stack and the job is redrawn, unless something other than an
// update replaced the job in the meantime.
func (s *JobStore) UpdateJob(ctx context.Context, id string, updates map[string]any) (models.Job, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return models.Job{}, shared.ErrStoreClosed
	}

	var edit *jobEdit
	if i, ok := s.index[id]; ok {
		group := s.edits[id]
		if group == nil || !reflect.DeepEqual(s.jobs[i], group.shown) {
			group = &jobEdits{base: s.jobs[i]}
			s.edits[id] = group
		}
		edit = &jobEdit{group: group, updates: updates}
		group.live = append(group.live, edit)
		group.shown = group.view()
		s.set(i, group.shown)
	}
	s.mu.Unlock()
	if edit != nil {
		s.subs.notify()
	}

	job, err := s.api.UpdateJob(ctx, id, updates)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		if err != nil {
			return models.Job{}, err
		}
		return job, shared.ErrStoreClosed
	}

	if err != nil {
		if edit != nil {
			s.rollback(id, edit)
		}
		s.errMsg = err.Error()
		s.mu.Unlock()
		s.subs.notify()
		return models.Job{}, err
	}

	s.splice(job)
	if edit != nil {
		s.confirm(id, edit)
	}
	s.errMsg = ""
	version, snapshot := s.version, models.CloneJobs(s.jobs)
	s.pending.Add(1)
	s.mu.Unlock()
	s.subs.notify()

	return job, s.persistWrite(ctx, version, snapshot)
}

// jobEdits is the stack of optimistic updates in flight for one job.
type jobEdits struct {
	base  models.Job // last confirmed value
	shown models.Job // what the collection held after the last redraw
	live  []*jobEdit
}

type jobEdit struct {
	group   *jobEdits
	updates map[string]any
}

func (g *jobEdits) view() models.Job {
	job := g.base
	for _, e := range g.live {
		job = normalize.Apply(job, e.updates)
	}
	return job
}

func (g *jobEdits) drop(e *jobEdit) {
	for i, x := range g.live {
		if x == e {
			g.live = append(g.live[:i:i], g.live[i+1:]...)
			return
		}
	}
}

// release drops e and reports whether its group still tracks the job. Callers hold s.mu.
func (s *JobStore) release(id string, e *jobEdit) bool {
	g := e.group
	g.drop(e)
	if s.edits[id] != g {
		return false
	}
	if len(g.live) == 0 {
		delete(s.edits, id)
	}
	return true
}

// rollback undoes a failed optimistic update. Callers hold s.mu.
func (s *JobStore) rollback(id string, e *jobEdit) {
	g := e.group
	tracked := s.release(id, e)

	i, ok := s.index[id]
	if !tracked || !ok || !reflect.DeepEqual(s.jobs[i], g.shown) {
		s.logger.Warn("skipping rollback, job changed during update", "id", id)
		return
	}
	g.shown = g.view()
	s.set(i, g.shown)
}

// confirm makes the spliced server result the job's confirmed value and
// layers any updates still in flight back on top. Callers hold s.mu.
func (s *JobStore) confirm(id string, e *jobEdit) {
	g := e.group
	if !s.release(id, e) || len(g.live) == 0 {
		return
	}
	i, ok := s.index[id]
	if !ok {
		delete(s.edits, id)
		return
	}
	g.base = s.jobs[i]
	g.shown = g.view()
	s.set(i, g.shown)
}

func (s *JobStore) AssignVendor(ctx context.Context, jobID, vendorID string) (models.Job, error) {
	return s.transition(ctx, func() (models.Job, error) { return s.api.AssignVendor(ctx, jobID, vendorID) })
}

func (s *JobStore) AcceptJob(ctx context.Context, jobID string) (models.Job, error) {
	return s.transition(ctx, func() (models.Job, error) { return s.api.AcceptJob(ctx, jobID) })
}

func (s *JobStore) CompleteSale(ctx context.Context, jobID string, sale models.SaleData) (models.Job, error) {
	return s.transition(ctx, func() (models.Job, error) { return s.api.CompleteSale(ctx, jobID, sale) })
}

// transition runs a server-side state change and splices the result. Nothing is applied optimistically.
func (s *JobStore) transition(ctx context.Context, call func() (models.Job, error)) (models.Job, error) {
	if err := s.alive(); err != nil {
		return models.Job{}, err
	}

	job, err := call()
	if err != nil {
		return models.Job{}, s.fail(err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return job, shared.ErrStoreClosed
	}
	s.splice(job)
	s.errMsg = ""
	version, snapshot := s.version, models.CloneJobs(s.jobs)
	s.pending.Add(1)
	s.mu.Unlock()
	s.subs.notify()

	return job, s.persistWrite(ctx, version, snapshot)
}

// AddNote posts a note and appends it to the job's notes.
func (s *JobStore) AddNote(ctx context.Context, jobID, content string) (models.JobNote, error) {
	if err := s.alive(); err != nil {
		return models.JobNote{}, err
	}

	note, err := s.api.AddNote(ctx, jobID, content)
	if err != nil {
		return models.JobNote{}, s.fail(err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return note, shared.ErrStoreClosed
	}
	i, ok := s.index[jobID]
	if !ok {
		s.errMsg = ""
		s.mu.Unlock()
		s.subs.notify()
		return note, nil
	}
	job := s.jobs[i].Clone()
	job.Notes = append(job.Notes, note)
	s.set(i, job)
	s.errMsg = ""
	version, snapshot := s.version, models.CloneJobs(s.jobs)
	s.pending.Add(1)
	s.mu.Unlock()
	s.subs.notify()

	return note, s.persistWrite(ctx, version, snapshot)
}

// GetNotes fetches a job's notes. The collection is not changed.
func (s *JobStore) GetNotes(ctx context.Context, jobID string) ([]models.JobNote, error) {
	if err := s.alive(); err != nil {
		return nil, err
	}
	return s.api.GetNotes(ctx, jobID)
}

// Clear empties the collection and removes the persisted snapshot, e.g. on logout.
func (s *JobStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return shared.ErrStoreClosed
	}
	s.replace([]models.Job{})
	s.errMsg = ""
	version := s.version
	s.pending.Add(1)
	s.mu.Unlock()
	s.subs.notify()
	defer s.pending.Done()

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.storage.RemoveItem(ctx, storage.KeyJobsSnapshot); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrSnapshotWrite, err)
	}
	s.persisted = version
	return nil
}

// Close drops late completions and waits for snapshot writes already under way.
func (s *JobStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subs.clear()
	s.pending.Wait()
	return nil
}

func (s *JobStore) alive() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return shared.ErrStoreClosed
	}
	return nil
}

// update mutates state under the lock and notifies. Dropped after Close.
func (s *JobStore) update(fn func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	fn()
	s.mu.Unlock()
	s.subs.notify()
}

// fail records err and returns it.
func (s *JobStore) fail(err error) error {
	s.update(func() { s.errMsg = err.Error() })
	return err
}

// replace swaps in a new collection. Callers hold s.mu.
func (s *JobStore) replace(jobs []models.Job) {
	if jobs == nil {
		jobs = []models.Job{}
	}
	s.jobs = jobs
	s.reindex()
}

// set replaces the job at i without mutating the previous slice. Callers hold s.mu.
func (s *JobStore) set(i int, job models.Job) {
	jobs := make([]models.Job, len(s.jobs))
	copy(jobs, s.jobs)
	jobs[i] = job
	s.replace(jobs)
}

// splice puts job in place by id, or at the front when it is not in the collection. Callers hold s.mu.
func (s *JobStore) splice(job models.Job) {
	if i, ok := s.index[job.ID]; ok {
		s.set(i, job.Clone())
		return
	}
	jobs := make([]models.Job, 0, len(s.jobs)+1)
	jobs = append(jobs, job.Clone())
	jobs = append(jobs, s.jobs...)
	s.replace(jobs)
}

func (s *JobStore) reindex() {
	s.version++
	s.index = make(map[string]int, len(s.jobs))
	for i, j := range s.jobs {
		if _, dup := s.index[j.ID]; !dup {
			s.index[j.ID] = i
		}
	}
}

// persistWrite saves the snapshot for a user-initiated write and records a failure.
// Callers take a s.pending slot while still holding s.mu; persistWrite releases it.
func (s *JobStore) persistWrite(ctx context.Context, version uint64, jobs []models.Job) error {
	defer s.pending.Done()
	if err := s.persist(ctx, version, jobs); err != nil {
		s.update(func() { s.errMsg = err.Error() })
		return err
	}
	return nil
}

// persist writes jobs unless a newer version has already been written.
func (s *JobStore) persist(ctx context.Context, version uint64, jobs []models.Job) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	if version < s.persisted {
		return nil
	}

	data, err := json.Marshal(jobs)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSnapshotWrite, err)
	}
	if err := s.storage.SetItem(ctx, storage.KeyJobsSnapshot, string(data)); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrSnapshotWrite, err)
	}
	s.persisted = version
	return nil
}
