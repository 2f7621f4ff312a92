// Package state holds the client-side view of marketplace data.
//
// # Job Store
//
// [JobStore] owns the job collection. Consumers read it through [JobStore.Jobs],
// [JobStore.IsLoading], [JobStore.Err] and [JobStore.GetJobByID], and change it
// only through the store's operations. Every change bumps a version counter,
// rebuilds the id index and notifies subscribers.
//
// Loading is two phases. The persisted snapshot is shown first, then a
// network fetch runs through a [Scheduler] lane and replaces the collection
// wholesale. Snapshot writes after a load are best effort; after a user
// initiated write they are reported.
//
// UpdateJob is optimistic. Each job with updates in flight is shown as its
// last confirmed value with the pending updates applied in call order. A
// failure drops that update from the stack and redraws the job; a success
// makes the server's job the new confirmed value. If a load or a transition
// replaced the job while an update was in flight, the failed update leaves
// the job alone.
//
// After [JobStore.Close] late completions are dropped. Close waits for
// snapshot writes that started before it.
//
// # Auth Store
//
// [AuthStore] tracks the signed-in user and implements [Session] for the job store.
package state
