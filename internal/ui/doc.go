// Package ui implements an interactive job dashboard using bubbletea's Elm architecture.
//
// The dashboard has two views:
//  1. [JobListView] : Browse the job collection, filter it and trigger a refresh
//  2. [JobDetailView] : Inspect a single job with its notes
//
// The [Model] only talks to a [JobSource] (normally a state.JobStore). It subscribes to the store's change
// notifications and turns each one into a message, so background loads and mutations made elsewhere redraw the list.
// It never reads the HTTP cache or edits the collection itself.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, r, a, q) with contextual help displayed via
// charmbracelet/bubbles/help.
package ui
