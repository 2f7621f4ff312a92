package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sidd1721986/Elite-App/internal/models"
	tea "github.com/charmbracelet/bubbletea"
)

type fakeSource struct {
	mu        sync.Mutex
	jobs      []models.Job
	loads     []bool
	accepted  []string
	acceptErr error
	subs      []func()
	unsubbed  bool
}

func (f *fakeSource) Jobs() []models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	return models.CloneJobs(f.jobs)
}

func (f *fakeSource) IsLoading() bool { return false }
func (f *fakeSource) Err() string     { return "" }

func (f *fakeSource) GetJobByID(id string) (models.Job, bool) {
	for _, j := range f.Jobs() {
		if j.ID == id {
			return j, true
		}
	}
	return models.Job{}, false
}

func (f *fakeSource) Subscribe(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, fn)
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unsubbed = true
	}
}

func (f *fakeSource) LoadJobs(_ context.Context, refresh bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, refresh)
	return nil
}

func (f *fakeSource) AcceptJob(_ context.Context, id string) (models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accepted = append(f.accepted, id)
	if f.acceptErr != nil {
		return models.Job{}, f.acceptErr
	}
	return models.Job{ID: id, Status: models.StatusAccepted}, nil
}

func (f *fakeSource) GetNotes(_ context.Context, id string) ([]models.JobNote, error) {
	return []models.JobNote{{ID: "n1", JobID: id, Content: "Call before arriving"}}, nil
}

// set replaces the collection and fires the subscribers like a store would.
func (f *fakeSource) set(jobs ...models.Job) {
	f.mu.Lock()
	f.jobs = jobs
	subs := append([]func(){}, f.subs...)
	f.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testJobs() []models.Job {
	return []models.Job{
		{ID: "2", Description: "Paint deck", Address: "9 Elm St", Status: models.StatusAssigned, Urgency: models.UrgencyThisWeek},
		{ID: "1", Description: "Fix fence", Address: "1 Main St", Status: models.StatusSubmitted, Urgency: models.UrgencyNoRush},
	}
}

func newTestModel(t *testing.T, src *fakeSource) *Model {
	t.Helper()
	m := NewModel(context.Background(), src, &models.User{Name: "Valley Roofing", Role: models.RoleVendor})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

func TestModel(t *testing.T) {
	t.Run("lists jobs from the store", func(t *testing.T) {
		src := &fakeSource{jobs: testJobs()}
		m := newTestModel(t, src)

		view := m.View()
		for _, want := range []string{"Jobs • Valley Roofing (Vendor)", "#2 Paint deck", "#1 Fix fence"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in view:\n%s", want, view)
			}
		}
	})

	t.Run("refresh bypasses snapshot", func(t *testing.T) {
		src := &fakeSource{}
		m := newTestModel(t, src)

		_, cmd := m.Update(runes("r"))
		if cmd == nil {
			t.Fatal("expected a load command")
		}
		msg := cmd()
		if got, ok := msg.(Msg); !ok || got.kind != MsgLoaded {
			t.Fatalf("expected loaded message, got %#v", msg)
		}
		if len(src.loads) != 1 || !src.loads[0] {
			t.Errorf("expected one refreshing load, got %v", src.loads)
		}
	})

	t.Run("store notifications redraw the list", func(t *testing.T) {
		src := &fakeSource{}
		m := newTestModel(t, src)

		src.set(testJobs()...)
		msg := m.waitForChange()()
		if got, ok := msg.(Msg); !ok || got.kind != MsgStoreChanged {
			t.Fatalf("expected store change, got %#v", msg)
		}
		m.Update(msg)

		if got := len(m.jobList.Items()); got != 2 {
			t.Errorf("expected 2 items after notification, got %d", got)
		}
	})

	t.Run("notifications coalesce", func(t *testing.T) {
		src := &fakeSource{}
		m := newTestModel(t, src)

		src.set(testJobs()...)
		src.set(testJobs()[:1]...)
		if got := len(m.changes); got != 1 {
			t.Errorf("expected one pending change, got %d", got)
		}
	})

	t.Run("accept selected job", func(t *testing.T) {
		src := &fakeSource{jobs: testJobs()}
		m := newTestModel(t, src)

		_, cmd := m.Update(runes("a"))
		if cmd == nil {
			t.Fatal("expected an accept command")
		}
		m.Update(cmd())

		if len(src.accepted) != 1 || src.accepted[0] != "2" {
			t.Errorf("expected job 2 to be accepted, got %v", src.accepted)
		}
		if !strings.Contains(m.View(), "Accepted job #2") {
			t.Errorf("expected confirmation in view")
		}
	})

	t.Run("accept failure is shown", func(t *testing.T) {
		src := &fakeSource{jobs: testJobs(), acceptErr: errors.New("You do not have permission to perform this action.")}
		m := newTestModel(t, src)

		_, cmd := m.Update(runes("a"))
		m.Update(cmd())

		if !strings.Contains(m.View(), "permission") {
			t.Errorf("expected error in view:\n%s", m.View())
		}
	})

	t.Run("detail view and back", func(t *testing.T) {
		src := &fakeSource{jobs: testJobs()}
		m := newTestModel(t, src)

		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != JobDetailView || m.selected != "2" {
			t.Fatalf("expected detail of job 2, got view=%d selected=%s", m.view, m.selected)
		}
		m.Update(cmd())

		view := m.View()
		for _, want := range []string{"Job #2", "Paint deck", "Call before arriving"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected %q in detail view:\n%s", want, view)
			}
		}

		m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != JobListView || m.selected != "" {
			t.Errorf("expected list view after esc")
		}
	})

	t.Run("detail of removed job", func(t *testing.T) {
		src := &fakeSource{jobs: testJobs()}
		m := newTestModel(t, src)
		m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		src.set(testJobs()[1:]...)
		if !strings.Contains(m.View(), "no longer available") {
			t.Errorf("expected missing job message")
		}
	})

	t.Run("quit unsubscribes", func(t *testing.T) {
		src := &fakeSource{}
		m := newTestModel(t, src)

		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if !src.unsubbed {
			t.Error("expected subscription to be released")
		}
	})

	t.Run("wait ends with context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		m := NewModel(ctx, &fakeSource{}, nil)
		cancel()

		done := make(chan tea.Msg, 1)
		go func() { done <- m.waitForChange()() }()
		select {
		case msg := <-done:
			if msg != nil {
				t.Errorf("expected nil message, got %#v", msg)
			}
		case <-time.After(time.Second):
			t.Fatal("wait did not return after cancel")
		}
	})
}
