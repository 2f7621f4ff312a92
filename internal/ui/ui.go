package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sidd1721986/Elite-App/internal/formatter"
	"github.com/Sidd1721986/Elite-App/internal/models"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	JobListView ViewState = iota
	JobDetailView
)

// JobSource is the consumer API the dashboard reads from.
type JobSource interface {
	Jobs() []models.Job
	IsLoading() bool
	Err() string
	GetJobByID(id string) (models.Job, bool)
	Subscribe(fn func()) func()
	LoadJobs(ctx context.Context, refresh bool) error
	AcceptJob(ctx context.Context, jobID string) (models.Job, error)
	GetNotes(ctx context.Context, jobID string) ([]models.JobNote, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	store       JobSource
	user        *models.User
	width       int
	height      int
	jobList     list.Model
	selected    string
	notes       []models.JobNote
	status      string
	err         error
	changes     chan struct{}
	unsubscribe func()
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
}

// NewModel creates a dashboard over store. user may be nil.
//
// The model subscribes immediately; [Model.Close] releases the subscription.
func NewModel(ctx context.Context, store JobSource, user *models.User) *Model {
	m := &Model{
		ctx:     ctx,
		view:    JobListView,
		store:   store,
		user:    user,
		changes: make(chan struct{}, 1),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.jobList = list.New(jobItems(store.Jobs()), list.NewDefaultDelegate(), 0, 0)
	m.jobList.Title = m.title()
	m.unsubscribe = store.Subscribe(func() {
		select {
		case m.changes <- struct{}{}:
		default:
		}
	})
	return m
}

// Close drops the store subscription.
func (m *Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// Init loads the collection (snapshot first, then network) and starts listening for store changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(false), m.waitForChange(), m.spinner.Tick)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.jobList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case JobListView:
			return m.handleListKeys(msg)
		case JobDetailView:
			return m.handleDetailKeys(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgStoreChanged:
		cmd := m.sync()
		return m, tea.Batch(cmd, m.waitForChange())

	case MsgLoaded:
		err, _ := msg.data.(error)
		m.err = err
		if err == nil {
			m.status = fmt.Sprintf("Loaded %d jobs", len(m.store.Jobs()))
		}
		return m, m.sync()

	case MsgAccepted:
		res := msg.data.(acceptResult)
		m.err = res.err
		if res.err == nil {
			m.status = fmt.Sprintf("Accepted job #%s", res.job.ID)
		}
		return m, nil

	case MsgNotesFetched:
		res := msg.data.(notesResult)
		if res.jobID != m.selected {
			return m, nil
		}
		m.notes = res.notes
		if res.err != nil {
			m.err = res.err
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case JobListView:
		return m.renderList()
	case JobDetailView:
		return m.renderDetail()
	default:
		return ""
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.jobList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.jobList, cmd = m.jobList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.refresh):
		return m, m.load(true)
	case key.Matches(msg, m.keys.accept):
		if id, ok := m.selectedID(); ok {
			return m, m.accept(id)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if id, ok := m.selectedID(); ok {
			m.view = JobDetailView
			m.selected = id
			m.notes = nil
			return m, m.fetchNotes(id)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.jobList, cmd = m.jobList.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = JobListView
		m.selected = ""
		m.notes = nil
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, tea.Batch(m.load(true), m.fetchNotes(m.selected))
	case key.Matches(msg, m.keys.accept):
		return m, m.accept(m.selected)
	}
	return m, nil
}

func (m *Model) selectedID() (string, bool) {
	item, ok := m.jobList.SelectedItem().(jobItem)
	if !ok {
		return "", false
	}
	return item.job.ID, true
}

// sync rebuilds the list from the store, keeping the cursor on the same job when it still exists.
func (m *Model) sync() tea.Cmd {
	current, _ := m.selectedID()
	jobs := m.store.Jobs()
	cmd := m.jobList.SetItems(jobItems(jobs))
	for i, j := range jobs {
		if j.ID == current {
			m.jobList.Select(i)
			break
		}
	}
	return cmd
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.changes:
			return storeChangedMsg()
		case <-m.ctx.Done():
			return nil
		}
	}
}

func (m *Model) load(refresh bool) tea.Cmd {
	m.status = ""
	return func() tea.Msg {
		return loadedMsg(m.store.LoadJobs(m.ctx, refresh))
	}
}

func (m *Model) accept(id string) tea.Cmd {
	return func() tea.Msg {
		job, err := m.store.AcceptJob(m.ctx, id)
		return acceptedMsg(job, err)
	}
}

func (m *Model) fetchNotes(id string) tea.Cmd {
	return func() tea.Msg {
		notes, err := m.store.GetNotes(m.ctx, id)
		return notesFetchedMsg(id, notes, err)
	}
}

func (m *Model) title() string {
	if m.user == nil {
		return "Jobs"
	}
	return fmt.Sprintf("Jobs • %s (%s)", m.user.Name, m.user.Role)
}

func (m *Model) statusLine() string {
	switch {
	case m.store.IsLoading():
		return m.spinner.View() + " Loading jobs..."
	case m.err != nil:
		return styles.err.Render("Error: " + m.err.Error())
	case m.store.Err() != "":
		return styles.err.Render("Error: " + m.store.Err())
	case m.status != "":
		return styles.ok.Render(m.status)
	}
	return ""
}

func (m *Model) renderList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.refresh, m.keys.accept, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.jobList.View(), m.statusLine(), helpView)
}

func (m *Model) renderDetail() string {
	job, ok := m.store.GetJobByID(m.selected)
	if !ok {
		return styles.err.Render(fmt.Sprintf("Job #%s is no longer available\n\nPress esc to go back", m.selected))
	}

	title := styles.title.Render(fmt.Sprintf("Job #%s • %s", job.ID, styles.status(job.Status)))
	job.Notes = nil
	body := string(formatter.JobDetail(job))

	var notes strings.Builder
	notes.WriteString("\n" + styles.label.Render("Notes") + "\n")
	if len(m.notes) == 0 {
		notes.WriteString(styles.help.Render("  none") + "\n")
	} else {
		notes.Write(formatter.NotesText(m.notes))
	}

	helpKeys := []key.Binding{m.keys.back, m.keys.refresh, m.keys.accept, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n%s\n\n%s", title, body, notes.String(), m.statusLine(), helpView)
}
