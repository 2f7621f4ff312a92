package ui

import (
	"github.com/Sidd1721986/Elite-App/internal/models"
	tea "github.com/charmbracelet/bubbletea"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgStoreChanged MsgKind = iota
	MsgLoaded
	MsgAccepted
	MsgNotesFetched
)

type acceptResult struct {
	job models.Job
	err error
}

type notesResult struct {
	jobID string
	notes []models.JobNote
	err   error
}

// storeChangedMsg is the constructor for [MsgStoreChanged]
func storeChangedMsg() Msg {
	return Msg{kind: MsgStoreChanged}
}

// loadedMsg is the constructor for [MsgLoaded]
func loadedMsg(err error) Msg {
	return Msg{kind: MsgLoaded, data: err}
}

// acceptedMsg is the constructor for [MsgAccepted]
func acceptedMsg(job models.Job, err error) Msg {
	return Msg{kind: MsgAccepted, data: acceptResult{job, err}}
}

// notesFetchedMsg is the constructor for [MsgNotesFetched]
func notesFetchedMsg(jobID string, notes []models.JobNote, err error) Msg {
	return Msg{kind: MsgNotesFetched, data: notesResult{jobID, notes, err}}
}
